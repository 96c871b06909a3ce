package config

import (
	"errors"
	"fmt"
)

// Validate checks required fields and value ranges. All failures are
// reported together with their field paths.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	if c.Auth.Issuer == "" {
		errs = append(errs, errors.New("auth.issuer is required"))
	}
	if c.Auth.PrivateKey == "" && c.Auth.PrivateKeyFile == "" {
		errs = append(errs, errors.New("auth.private_key or auth.private_key_file is required"))
	}
	if c.Auth.AccessTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.access_ttl must be positive, got %s", c.Auth.AccessTTL))
	}
	if c.Auth.RefreshTTL <= c.Auth.AccessTTL {
		errs = append(errs, fmt.Errorf("auth.refresh_ttl must exceed auth.access_ttl, got %s", c.Auth.RefreshTTL))
	}
	if c.Auth.CookieSecret != "" && len(c.Auth.CookieSecret) < 32 {
		errs = append(errs, fmt.Errorf("auth.cookie_secret must be at least 32 bytes, got %d", len(c.Auth.CookieSecret)))
	}

	switch c.Storage.Type {
	case "memory", "postgres":
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}
	if c.Storage.Type == "postgres" && c.Storage.Postgres.ConnectionString == "" {
		errs = append(errs, errors.New("storage.postgres.conn_url is required when storage.type is \"postgres\""))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.rps must be positive, got %v", c.RateLimit.RPS))
		}
		if c.RateLimit.Burst <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.burst must be positive, got %d", c.RateLimit.Burst))
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level))
	}

	return errors.Join(errs...)
}
