// Package config provides layered configuration for the gate service.
//
// Configuration is assembled in order:
//  1. Built-in defaults
//  2. YAML config file (explicit path, GATE_CONFIG env, ./config.yaml,
//     /etc/gate/config.yaml)
//  3. Environment variable overrides (GATE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"time"

	"github.com/dmitrymomot/gate/pkg/db"
)

// Config holds all settings for the gate service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 15s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
	Debug           bool          `yaml:"debug"`            // expose error detail in responses
}

// AuthConfig holds token issuance and cookie settings.
type AuthConfig struct {
	Issuer         string `yaml:"issuer"` // required
	PrivateKey     string `yaml:"private_key"`
	PrivateKeyFile string `yaml:"private_key_file"` // _file variant for private_key

	AccessTTL  time.Duration `yaml:"access_ttl"`  // default: 15m
	RefreshTTL time.Duration `yaml:"refresh_ttl"` // default: 720h

	CookieDomain     string `yaml:"cookie_domain"`
	CookiePath       string `yaml:"cookie_path"` // default: "/"
	SecureCookies    bool   `yaml:"secure_cookies"` // default: true, disable only for local HTTP
	CookieSecret     string `yaml:"cookie_secret"` // >= 32 bytes, for signed cookies
	CookieSecretFile string `yaml:"cookie_secret_file"`
}

// StorageConfig selects the refresh-token store backend.
type StorageConfig struct {
	Type     string    `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres db.Config `yaml:"postgres"`
}

// RedisConfig holds the connection for distributed rate-limit counters.
type RedisConfig struct {
	URL string `yaml:"url"` // empty disables the redis-backed limiter
}

// RateLimitConfig holds request throttling settings.
type RateLimitConfig struct {
	Enabled       bool          `yaml:"enabled"`        // default: true
	RPS           float64       `yaml:"rps"`            // default: 10
	Burst         int           `yaml:"burst"`          // default: 20
	Window        time.Duration `yaml:"window"`         // fixed window size for redis, default: 1m
	WindowLimit   int64         `yaml:"window_limit"`   // max requests per window, default: 600
	ExcludedPaths []string      `yaml:"excluded_paths"` // default: health endpoints
}

// LogConfig holds logging and Sentry settings.
type LogConfig struct {
	Level       string `yaml:"level"` // debug/info/warn/error, default: "info"
	SentryDSN   string `yaml:"sentry_dsn"`
	Environment string `yaml:"environment"` // default: "production"
}

// Defaults returns a Config with every default filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    720 * time.Hour,
			CookiePath:    "/",
			SecureCookies: true,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: db.Config{
				MigrationsTable:   "schema_migrations",
				MaxOpenConns:      10,
				MinConns:          2,
				HealthCheckPeriod: time.Minute,
				MaxConnIdleTime:   10 * time.Minute,
				MaxConnLifetime:   30 * time.Minute,
				RetryAttempts:     3,
				RetryInterval:     2 * time.Second,
			},
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			RPS:           10,
			Burst:         20,
			Window:        time.Minute,
			WindowLimit:   600,
			ExcludedPaths: []string{"/health/live", "/health/ready"},
		},
		Log: LogConfig{
			Level:       "info",
			Environment: "production",
		},
	}
}
