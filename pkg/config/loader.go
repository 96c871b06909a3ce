package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load assembles configuration from defaults, an optional YAML file,
// GATE_* environment overrides, and _file secret references, then
// validates the result.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile resolves the config file path. An explicit argument
// wins, then GATE_CONFIG, then the standard locations. Empty means run on
// defaults and env vars alone.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("GATE_CONFIG"); envPath != "" {
		return envPath
	}
	for _, path := range []string{"config.yaml", "/etc/gate/config.yaml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GATE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GATE_DEBUG"); v != "" {
		cfg.Server.Debug = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("GATE_ISSUER"); v != "" {
		cfg.Auth.Issuer = v
	}
	if v := os.Getenv("GATE_PRIVATE_KEY_FILE"); v != "" {
		cfg.Auth.PrivateKeyFile = v
	}
	if v := os.Getenv("GATE_COOKIE_SECRET"); v != "" {
		cfg.Auth.CookieSecret = v
	}
	if v := os.Getenv("GATE_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("DATABASE_CONN_URL"); v != "" {
		cfg.Storage.Postgres.ConnectionString = v
	}
	if v := os.Getenv("GATE_REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		cfg.Log.SentryDSN = v
	}
	if v := os.Getenv("GATE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// resolveFileReferences reads _file fields into their value counterparts.
// The value field wins when both are set.
func resolveFileReferences(cfg *Config) error {
	if cfg.Auth.PrivateKeyFile != "" && cfg.Auth.PrivateKey == "" {
		val, err := readSecretFile(cfg.Auth.PrivateKeyFile)
		if err != nil {
			return fmt.Errorf("auth.private_key_file: %w", err)
		}
		cfg.Auth.PrivateKey = val
	}
	if cfg.Auth.CookieSecretFile != "" && cfg.Auth.CookieSecret == "" {
		val, err := readSecretFile(cfg.Auth.CookieSecretFile)
		if err != nil {
			return fmt.Errorf("auth.cookie_secret_file: %w", err)
		}
		cfg.Auth.CookieSecret = val
	}
	return nil
}

func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
