package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds server configuration, sourced from the environment
// (optionally seeded from a .env file).
type Config struct {
	DatabaseDSN string
	JWTSecret   string
	Port        string
}

// Load reads configuration from .env (if present) and the environment.
func Load() *Config {
	godotenv.Load()

	cfg := &Config{
		DatabaseDSN: os.Getenv("SHIORI_DB_DSN"),
		JWTSecret:   os.Getenv("SHIORI_JWT_SECRET"),
		Port:        os.Getenv("PORT"),
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "shiori.db"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	return cfg
}
