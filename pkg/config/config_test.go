package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load("8080", false)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, int64(900000), cfg.DefaultClockMs)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.LeaderboardTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/matches")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("API_KEYS", "key-a, key-b, ,key-c")
	t.Setenv("DEFAULT_CLOCK_MS", "300000")
	t.Setenv("LEADERBOARD_TTL_SECONDS", "60")

	cfg := Load("9090", true)

	assert.Equal(t, "postgres://localhost/matches", cfg.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, []string{"key-a", "key-b", "key-c"}, cfg.APIKeys)
	assert.Equal(t, int64(300000), cfg.DefaultClockMs)
	assert.Equal(t, 60*time.Second, cfg.LeaderboardTTL)
	assert.True(t, cfg.Debug)
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("DEFAULT_CLOCK_MS", "not-a-number")
	t.Setenv("TOKEN_TTL_HOURS", "-3")

	cfg := Load("8080", false)

	assert.Equal(t, int64(900000), cfg.DefaultClockMs)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}
