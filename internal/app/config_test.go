package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ORDERENTRY_DATABASE_URL", "postgres://localhost/orders")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, defaultAddr, cfg.Addr)
	assert.Equal(t, "postgres://localhost/orders", cfg.DatabaseURL)
	assert.True(t, cfg.AutoMigrate)
	assert.False(t, cfg.Seed)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, int32(1), cfg.Database.MaxConns)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, 15*time.Second, cfg.Graceful.ShutdownTimeout)

	pool := cfg.Pool()
	assert.Equal(t, cfg.DatabaseURL, pool.URL)
	assert.Equal(t, int32(1), pool.MaxConns)
}

func TestLoadConfig_PlatformFallbacks(t *testing.T) {
	t.Setenv("ORDERENTRY_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "postgres://db/platform")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/platform", cfg.DatabaseURL)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ORDERENTRY_DATABASE_URL", "postgres://localhost/orders")
	t.Setenv("ORDERENTRY_ADDR", "127.0.0.1:7000")
	t.Setenv("ORDERENTRY_DATABASE_MAX_CONNS", "4")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("MissingDatabaseURL", func(t *testing.T) {
		t.Setenv("ORDERENTRY_DATABASE_URL", "")
		t.Setenv("DATABASE_URL", "")

		_, err := LoadConfig()
		require.ErrorContains(t, err, "database URL is required")
	})
	t.Run("ZeroConns", func(t *testing.T) {
		t.Setenv("ORDERENTRY_DATABASE_URL", "postgres://localhost/orders")
		t.Setenv("ORDERENTRY_DATABASE_MAX_CONNS", "0")

		_, err := LoadConfig()
		require.ErrorContains(t, err, "max conns")
	})
}
