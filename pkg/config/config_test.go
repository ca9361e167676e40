package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/examplehub")
	t.Setenv("PORT", "")
	t.Setenv("REDIS_ENABLED", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("STRIPE_SECRET_KEY", "")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Stripe.Enabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/examplehub")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("SITE_URL", "https://examplehub.dev/")
	t.Setenv("JWT_TTL_HOURS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "https://examplehub.dev", cfg.Server.SiteURL)
	assert.Equal(t, 24*7, cfg.JWT.TTLHours)
}

func TestValidate(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cfg := Load()
	assert.EqualError(t, cfg.Validate(), "DATABASE_URL is required")

	cfg.Database.URL = "postgres://db/examplehub"
	cfg.Server.Environment = "production"
	cfg.JWT.Secret = defaultJWTSecret
	assert.EqualError(t, cfg.Validate(), "JWT_SECRET must be set in production")

	cfg.JWT.Secret = "a-real-secret"
	cfg.Stripe.SecretKey = "sk_live_x"
	cfg.Stripe.WebhookSecret = ""
	assert.Error(t, cfg.Validate())

	cfg.Stripe.WebhookSecret = "whsec_x"
	assert.NoError(t, cfg.Validate())
}
