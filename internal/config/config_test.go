package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadRejectsBadTokenTTL(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNegativeTokenTTL(t *testing.T) {
	t.Setenv("TOKEN_TTL", "-5m")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		assert.Equal(t, tt.want, cfg.SlogLevel(), tt.level)
	}
}
