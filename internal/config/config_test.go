package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
service:
  name: discovery
providers:
  - name: brave
    enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Service.Port)
	assert.Equal(t, 20, cfg.Service.MaxResults)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 24*time.Hour, cfg.Redis.BlacklistTTL)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, 5*time.Second, cfg.Providers[0].Timeout)
	assert.Equal(t, 2000, cfg.Providers[0].DailyLimit)
	assert.Equal(t, 1.0, cfg.Providers[0].RatePerSec)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.internal
  password: from-file
logging:
  level: debug
`)

	t.Setenv("POSTGRES_PASSWORD", "from-env")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host, "file value kept when env unset")
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.yml", GetConfigPath("config.yml"))

	t.Setenv("CONFIG_PATH", "/etc/discovery/config.yml")
	assert.Equal(t, "/etc/discovery/config.yml", GetConfigPath("config.yml"))
}
