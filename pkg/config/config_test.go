package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.App.Env)
	require.True(t, cfg.App.IsDev())
	require.Equal(t, "8080", cfg.App.Port)

	require.Equal(t, "shopstate.db", cfg.Store.Path)

	require.Equal(t, "https://fakestoreapi.com", cfg.Catalog.FakeStoreBaseURL)
	require.Equal(t, "https://dummyjson.com", cfg.Catalog.DummyJSONBaseURL)
	require.Equal(t, 3, cfg.Catalog.MaxRetries)
	require.Equal(t, time.Second, cfg.Catalog.InitialDelay)

	require.False(t, cfg.Redis.Enabled())
	require.Equal(t, 12*time.Hour, cfg.JWT.Expiration())
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("SHOPSTATE_APP_ENV", "prod")
	t.Setenv("SHOPSTATE_CATALOG_MAX_RETRIES", "5")
	t.Setenv("SHOPSTATE_REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.App.IsProd())
	require.Equal(t, 5, cfg.Catalog.MaxRetries)
	require.True(t, cfg.Redis.Enabled())
}

func TestJWTExpirationFallsBackOnNonPositive(t *testing.T) {
	cfg := JWTConfig{ExpirationMinutes: 0}
	require.Equal(t, 12*time.Hour, cfg.Expiration())

	cfg.ExpirationMinutes = 30
	require.Equal(t, 30*time.Minute, cfg.Expiration())
}
