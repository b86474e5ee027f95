package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port          string
	DatabaseURL   string
	PlaidClientID string
	PlaidSecret   string
	PlaidEnv      string
	DwollaBaseURL string
	DwollaKey     string
	DwollaSecret  string
	LogLevel      string
}

// Load loads environment variables into the Config struct.
func Load() (*Config, error) {
	// Load from .env file if present (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   mustEnv("DATABASE_URL"),
		PlaidClientID: mustEnv("PLAID_CLIENT_ID"),
		PlaidSecret:   mustEnv("PLAID_SECRET"),
		PlaidEnv:      getEnv("PLAID_ENV", "sandbox"), // sandbox | development | production
		DwollaBaseURL: getEnv("DWOLLA_BASE_URL", "https://api-sandbox.dwolla.com"),
		DwollaKey:     mustEnv("DWOLLA_KEY"),
		DwollaSecret:  mustEnv("DWOLLA_SECRET"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// mustEnv returns the value of the env var or panics if missing.
func mustEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("missing required environment variable: %s", key))
	}
	return val
}

// getEnv returns the env var value or default if unset.
func getEnv(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}
