// Package config holds the runtime configuration of the server, assembled
// from flags and environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Debug bool
	Port  string

	DatabaseURL string
	RedisURL    string

	APIKeys        []string
	FrontendPath   string
	JWTSecret      string
	TokenTTL       time.Duration
	DefaultClockMs int64
	LeaderboardTTL time.Duration
}

// Load fills the config from the environment on top of the flag-provided
// port and debug switch. Missing variables fall back to defaults; the only
// hard requirements (a signing secret for logins, a database for rated
// play) degrade to guest-only operation when absent.
func Load(port string, debug bool) *Config {
	cfg := &Config{
		Debug:          debug,
		Port:           port,
		TokenTTL:       24 * time.Hour,
		DefaultClockMs: 900000, // 15 minutes per side
		LeaderboardTTL: 30 * time.Second,
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.FrontendPath = strings.TrimSpace(os.Getenv("FRONTEND_PATH"))
	cfg.JWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))

	if v := strings.TrimSpace(os.Getenv("API_KEYS")); v != "" {
		for _, key := range strings.Split(v, ",") {
			if key = strings.TrimSpace(key); key != "" {
				cfg.APIKeys = append(cfg.APIKeys, key)
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv("DEFAULT_CLOCK_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.DefaultClockMs = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("TOKEN_TTL_HOURS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TokenTTL = time.Duration(n) * time.Hour
		}
	}

	if v := strings.TrimSpace(os.Getenv("LEADERBOARD_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LeaderboardTTL = time.Duration(n) * time.Second
		}
	}

	return cfg
}
