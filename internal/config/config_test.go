package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DELIVERY_FEE", "")
	t.Setenv("FREE_DELIVERY_THRESHOLD", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(500), cfg.DeliveryFee)
	assert.Equal(t, int64(10000), cfg.FreeDeliveryThreshold)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowOrigins)
	assert.True(t, cfg.RunMigrations)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DELIVERY_FEE", "250")
	t.Setenv("RUN_MIGRATIONS", "no")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("CORS_ALLOW_ORIGINS", " http://a.test , ,http://b.test")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, int64(250), cfg.DeliveryFee)
	assert.False(t, cfg.RunMigrations)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowOrigins)
}

func TestParseHelpersFallBack(t *testing.T) {
	assert.Equal(t, time.Second, parseDuration("soon", time.Second))
	assert.Equal(t, int64(7), parseInt64("-3", 7))
	assert.Equal(t, int64(7), parseInt64("x", 7))
	assert.True(t, parseBool("maybe", true))
	assert.Equal(t, []string{"*"}, splitCSV(" , "))
}

func TestTokenKeyHasNoDefault(t *testing.T) {
	t.Setenv("JWT_TOKEN_KEY", "")

	cfg := Load()

	assert.Empty(t, cfg.TokenKey)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingTokenKey)
}

func TestValidateAcceptsConfiguredKey(t *testing.T) {
	t.Setenv("JWT_TOKEN_KEY", "a key supplied by the deployment environment that is long enough")

	require.NoError(t, Load().Validate())
}
