package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Local.Driver)
	assert.Equal(t, "equipos.db", cfg.Local.Name)
	assert.Equal(t, "postgres", cfg.Remote.Driver)
	assert.False(t, cfg.Remote.Enabled())
	assert.Equal(t, 300, cfg.Sync.IntervalSeconds)
	assert.True(t, cfg.Sync.OnWrite)
	assert.Equal(t, "exports", cfg.Export.Prefix)
	assert.Equal(t, "equipos.sync", cfg.Broker.Exchange)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "REMOTE_URL=postgres://u:p@db:5432/inventario\nSYNC_INTERVAL_SECONDS=60\nSERVER_API_KEY=secret\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("REMOTE_URL")
		os.Unsetenv("SYNC_INTERVAL_SECONDS")
		os.Unsetenv("SERVER_API_KEY")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.True(t, cfg.Remote.Enabled())
	assert.Equal(t, "postgres://u:p@db:5432/inventario", cfg.Remote.URL)
	assert.Equal(t, 60, cfg.Sync.IntervalSeconds)
	assert.Equal(t, "secret", cfg.Server.ApiKey)
}

func TestLoadConfig_DatabaseURLAlias(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@shared:5432/inv")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@shared:5432/inv", cfg.Remote.URL)
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	t.Run("UnknownLocalDriver", func(t *testing.T) {
		cfg := base()
		cfg.Local.Driver = "oracle"
		assert.Error(t, cfg.Validate())
	})

	t.Run("UnknownRemoteDriver", func(t *testing.T) {
		cfg := base()
		cfg.Remote.URL = "x"
		cfg.Remote.Driver = "oracle"
		assert.Error(t, cfg.Validate())
	})

	t.Run("NegativeInterval", func(t *testing.T) {
		cfg := base()
		cfg.Sync.IntervalSeconds = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("ZeroAttempts", func(t *testing.T) {
		cfg := base()
		cfg.Sync.MaxAttempts = 0
		assert.Error(t, cfg.Validate())
	})
}
