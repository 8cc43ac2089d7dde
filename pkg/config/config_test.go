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
	require.False(t, cfg.App.IsProd())
	require.Equal(t, "127.0.0.1:8080", cfg.App.Addr())
	require.Empty(t, cfg.App.CORSOrigins)
	require.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	require.Equal(t, 15*time.Second, cfg.API.Timeout)
	require.Equal(t, StorageSQLite, cfg.Storage.Driver)
	require.Equal(t, "storefront.db", cfg.Storage.Path)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_APP_ENV", "prod")
	t.Setenv("STOREFRONT_API_BASE_URL", "https://shop.example.com")
	t.Setenv("STOREFRONT_API_TIMEOUT", "3s")
	t.Setenv("STOREFRONT_STORAGE_DRIVER", "redis")
	t.Setenv("STOREFRONT_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("STOREFRONT_CORS_ORIGINS", "http://localhost:5173,https://shop.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	require.True(t, cfg.App.IsProd())
	require.Equal(t, "https://shop.example.com", cfg.API.BaseURL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, StorageRedis, cfg.Storage.Driver)
	require.Equal(t, []string{"http://localhost:5173", "https://shop.example.com"}, cfg.App.CORSOrigins)
}

func TestLoadRejectsIncompleteStorage(t *testing.T) {
	tests := []struct {
		name   string
		driver string
	}{
		{name: "mysql without dsn", driver: "mysql"},
		{name: "postgres without dsn", driver: "postgres"},
		{name: "redis without url", driver: "redis"},
		{name: "unknown driver", driver: "floppy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STOREFRONT_STORAGE_DRIVER", tt.driver)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadRejectsWildcardCORSInProd(t *testing.T) {
	t.Setenv("STOREFRONT_APP_ENV", "prod")
	t.Setenv("STOREFRONT_CORS_ORIGINS", "https://shop.example.com,*")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("STOREFRONT_APP_ENV", "dev")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"https://shop.example.com", "*"}, cfg.App.CORSOrigins)
}
