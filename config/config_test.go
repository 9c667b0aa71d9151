package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	for _, key := range []string{
		"DATABASE_URL", "PORT", "APP_BASE_URL", "JWT_SECRET", "CORS_ALLOWED_ORIGINS", "REDIS_URL",
		"EMAIL_PROVIDER", "EMAIL_FROM_NAME", "DRAW_MAX_RANDOM_ATTEMPTS", "DRAW_MAX_SEARCH_STEPS",
		"DRAW_TIMEOUT", "LOCK_TTL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Empty(t, cfg.RedisURL)
	assert.Nil(t, cfg.CORSAllowedOrigins)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 500, cfg.Draw.MaxRandomAttempts)
	assert.Equal(t, 1_000_000, cfg.Draw.MaxSearchSteps)
	assert.Equal(t, 10*time.Second, cfg.Draw.Timeout)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DRAW_MAX_RANDOM_ATTEMPTS", "50")
	t.Setenv("DRAW_TIMEOUT", "2s")
	t.Setenv("APP_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 50, cfg.Draw.MaxRandomAttempts)
	assert.Equal(t, 2*time.Second, cfg.Draw.Timeout)
	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"attempts not a number", "DRAW_MAX_RANDOM_ATTEMPTS", "many"},
		{"zero search steps", "DRAW_MAX_SEARCH_STEPS", "0"},
		{"bad timeout", "DRAW_TIMEOUT", "soon"},
		{"negative ttl", "LOCK_TTL", "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GO_ENV", "test")
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("warn").String())
	assert.Equal(t, "INFO", parseLevel("").String())
	assert.Equal(t, "INFO", parseLevel("loud").String())
}
