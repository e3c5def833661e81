package config

import (
	"os"
	"strings"
)

type Config struct {
	Port           string
	DatabasePath   string
	MigrationsDir  string
	AllowedOrigins []string
}

// Load reads configuration from the environment with local-dev defaults.
// godotenv in main fills the environment from .env first.
func Load() Config {
	return Config{
		Port:           getEnv("PORT", "8080"),
		DatabasePath:   getEnv("DATABASE_PATH", "hackboard.db"),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),
		AllowedOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
