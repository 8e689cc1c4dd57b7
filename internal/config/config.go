// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the board service.
type Config struct {
	Port                  string
	GRPCPort              string
	DatabaseURL           string
	RedisURL              string
	CatalogRefreshMinutes int // How often the published catalog is reloaded
	PaymentAPIURL         string
	PaymentAPIKey         string
	PublicOrigin          string // e.g. "https://jobs.example.com"
}

// Load reads a local .env file when present, then environment variables,
// and returns a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	refresh := 5
	if s := os.Getenv("CATALOG_REFRESH_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("CATALOG_REFRESH_MINUTES must be a positive integer, got %q", s)
		}
		refresh = v
	}

	return &Config{
		Port:                  getenv("BOARD_PORT", "8083"),
		GRPCPort:              getenv("BOARD_GRPC_PORT", "9083"),
		DatabaseURL:           dbURL,
		RedisURL:              redisURL,
		CatalogRefreshMinutes: refresh,
		PaymentAPIURL:         os.Getenv("PAYMENT_API_URL"),
		PaymentAPIKey:         os.Getenv("PAYMENT_API_KEY"),
		PublicOrigin:          getenv("PUBLIC_ORIGIN", "http://localhost:5173"),
	}, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
