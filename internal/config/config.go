package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret"

type Config struct {
	Addr string

	RecommendAPIURL string
	SearchAPIURL    string
	APITimeout      time.Duration

	// DatabaseURL is optional; without it result snapshots live in memory.
	DatabaseURL string

	JWTSecret    string
	SceneTTL     time.Duration
	HandoffGrace time.Duration
	HandoffTTL   time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads a .env file when present and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:            getString("SHOP_ADDR", ":8080"),
		RecommendAPIURL: getString("RECOMMEND_API_URL", "http://localhost:8000"),
		SearchAPIURL:    getString("SEARCH_API_URL", "http://localhost:8000"),
		APITimeout:      getDuration("API_TIMEOUT", 30*time.Second),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       getString("JWT_SECRET", devJWTSecret),
		SceneTTL:        getDuration("SCENE_TTL", 30*time.Minute),
		HandoffGrace:    getDuration("HANDOFF_GRACE", 50*time.Millisecond),
		HandoffTTL:      getDuration("HANDOFF_TTL", 10*time.Minute),
		LogLevel:        getString("LOG_LEVEL", "info"),
		LogFormat:       getString("LOG_FORMAT", "json"),
	}
}

// UsesDevSecret reports whether tokens are signed with the built-in development key.
func (c Config) UsesDevSecret() bool {
	return c.JWTSecret == devJWTSecret
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go duration strings ("45s", "10m"); invalid or
// non-positive values fall back to the default.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
