// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds everything cmd/server needs to wire the service.
type Config struct {
	HTTPAddr string
	DBPath   string
	// JWTSecret signs role tokens. Required.
	JWTSecret string
	// OwnerPassHash is the bcrypt hash of the owner passphrase. Required.
	OwnerPassHash string
	TokenTTL      time.Duration
	ServiceName   string
}

// Load reads configuration from the environment, applying defaults for
// the optional values.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		DBPath:        getenv("DB_PATH", "./data/depot.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		OwnerPassHash: os.Getenv("OWNER_PASSPHRASE_HASH"),
		ServiceName:   getenv("SERVICE_NAME", "depotvente"),
	}

	ttl := getenv("TOKEN_TTL", "24h")
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return Config{}, fmt.Errorf("invalid TOKEN_TTL %q: %w", ttl, err)
	}
	cfg.TokenTTL = d

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.OwnerPassHash == "" {
		return Config{}, fmt.Errorf("OWNER_PASSPHRASE_HASH is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
