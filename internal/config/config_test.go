package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "mongodb://localhost:27017")
	t.Setenv("DATABASE_NAME", "livaro_test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "8000", cfg.Server.Port)
	require.Equal(t, "mongo", cfg.Database.Driver)
	require.Equal(t, "livaro_test", cfg.Database.Name)
	require.Equal(t, 10*time.Second, cfg.Database.Timeout)
	require.Equal(t, int64(50), cfg.Query.DefaultLimit)
	require.Equal(t, int64(500), cfg.Query.MaxLimit)
	require.Equal(t, []string{"*"}, cfg.Server.AllowOrigins)
	require.False(t, cfg.RateLimit.Enabled)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("QUERY_DEFAULT_LIMIT", "20")
	t.Setenv("QUERY_MAX_LIMIT", "0")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://livaro.de, https://admin.livaro.de")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "9100", cfg.Server.Port)
	require.Equal(t, "memory", cfg.Database.Driver)
	require.Equal(t, int64(20), cfg.Query.DefaultLimit)
	require.Equal(t, int64(0), cfg.Query.MaxLimit)
	require.True(t, cfg.RateLimit.Enabled)
	require.InDelta(t, 2.5, cfg.RateLimit.RPS, 1e-9)
	require.Equal(t, []string{"https://livaro.de", "https://admin.livaro.de"}, cfg.Server.AllowOrigins)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"driver":        {"STORE_DRIVER": "postgres"},
		"default limit": {"QUERY_DEFAULT_LIMIT": "0"},
		"max below":     {"QUERY_DEFAULT_LIMIT": "100", "QUERY_MAX_LIMIT": "10"},
		"attempts":      {"DATABASE_CONNECT_ATTEMPTS": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}
