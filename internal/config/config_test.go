package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "web", cfg.WebDir)
	assert.Equal(t, 12*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 15*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 15*time.Second, cfg.SnapshotTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.AuthDisabled)
	assert.False(t, cfg.TrustForwardAuth)
	assert.False(t, cfg.OIDCEnabled())
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadPostgresNeedsURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/healthdash?sslmode=disable")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/hd.db")
	t.Setenv("STORE_TIMEOUT", "3s")
	t.Setenv("REFRESH_INTERVAL", "1m")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("OIDC_ISSUER", "https://id.example.com")
	t.Setenv("OIDC_CLIENT_ID", "healthdash")
	t.Setenv("TZ_NAME", "Europe/Berlin")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hd.db", cfg.SQLitePath)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.True(t, cfg.AuthDisabled)
	assert.True(t, cfg.OIDCEnabled())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			StoreDriver:     DriverMemory,
			SnapshotTTL:     time.Second,
			StoreTimeout:    time.Second,
			RefreshInterval: time.Second,
			SessionSweep:    time.Second,
			ShutdownTimeout: time.Second,
			LogFormat:       "text",
		}
	}
	ok := base()
	require.NoError(t, ok.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }, "STORE_DRIVER"},
		{"zero timeout", func(c *Config) { c.StoreTimeout = 0 }, "STORE_TIMEOUT"},
		{"negative interval", func(c *Config) { c.RefreshInterval = -time.Second }, "REFRESH_INTERVAL"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
		{"half oidc", func(c *Config) { c.OIDCIssuer = "https://id.example.com" }, "OIDC_CLIENT_ID"},
		{"bad zone", func(c *Config) { c.TZName = "Mars/Olympus" }, "TZ_NAME"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
