// Package config loads server configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything cmd/server needs to wire the process.
type Config struct {
	// Port the HTTP server listens on.
	Port int
	// DBPath is the SQLite database file.
	DBPath string
	// JWTSecret enables bearer-token principal resolution when set.
	JWTSecret string
	// TokenDuration bounds tokens minted by the dev token helper.
	TokenDuration time.Duration
	// RedisAddr enables the rate limiter when set.
	RedisAddr string
	// RateLimitRPM is the per-principal request budget per minute.
	RateLimitRPM int
}

// Load reads configuration from environment variables, falling back to
// development defaults.
func Load() Config {
	return Config{
		Port:          getEnvInt("PORT", 8080),
		DBPath:        getEnv("DB_PATH", "./data/duitsplit.db"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenDuration: 24 * time.Hour,
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RateLimitRPM:  getEnvInt("RATE_LIMIT_RPM", 100),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
