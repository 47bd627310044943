package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, GatewayDriverPostgres, cfg.Gateway.Driver)
	assert.Equal(t, "authenticated", cfg.Gateway.JWTRole)
	assert.Equal(t, time.Duration(0), cfg.Gateway.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Forms.SessionTTL)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GATEWAY_DRIVER", " PostgREST ")
	t.Setenv("POSTGREST_URL", "https://db.example.test/rest/v1/")
	t.Setenv("ENABLE_CACHE", "true")
	t.Setenv("CATALOG_CACHE_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://a.test, ,https://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, GatewayDriverPostgREST, cfg.Gateway.Driver)
	assert.Equal(t, "https://db.example.test/rest/v1", cfg.Gateway.URL)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Cache.CatalogTTL)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORS.AllowedOrigins)
}
