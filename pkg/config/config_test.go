package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gate/pkg/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaultsWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 9090
auth:
  issuer: gate-test
  private_key: fake-pem
  access_ttl: 5m
  refresh_ttl: 24h
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "gate-test", cfg.Auth.Issuer)
	require.Equal(t, 5*time.Minute, cfg.Auth.AccessTTL)
	// untouched fields keep defaults
	require.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, "memory", cfg.Storage.Type)
	require.True(t, cfg.RateLimit.Enabled)
	require.True(t, cfg.Auth.SecureCookies, "cookies default to secure")
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
auth:
  issuer: from-file
  private_key: fake-pem
`)
	t.Setenv("GATE_ISSUER", "from-env")
	t.Setenv("GATE_PORT", "7070")
	t.Setenv("GATE_DEBUG", "true")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Auth.Issuer)
	require.Equal(t, 7070, cfg.Server.Port)
	require.True(t, cfg.Server.Debug)
}

func TestLoadFileReferences(t *testing.T) {
	dir := t.TempDir()
	keyPath := writeFile(t, dir, "key.pem", "secret-pem-content\n")
	path := writeFile(t, dir, "config.yaml", `
auth:
  issuer: gate-test
  private_key_file: `+keyPath+`
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "secret-pem-content", cfg.Auth.PrivateKey)
}

func TestLoadValidationFailures(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "config.yaml", `
auth:
  issuer: ""
`)
	_, err := config.Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "auth.issuer")
	require.Contains(t, err.Error(), "private_key")

	path = writeFile(t, dir, "bad-storage.yaml", `
auth:
  issuer: gate
  private_key: pem
storage:
  type: cassandra
`)
	_, err = config.Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "storage.type")

	path = writeFile(t, dir, "short-secret.yaml", `
auth:
  issuer: gate
  private_key: pem
  cookie_secret: tooshort
`)
	_, err = config.Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cookie_secret")
}

func TestLoadMissingFileIsError(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
