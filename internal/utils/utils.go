package utils

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env (when present) and returns the required variables
func LoadEnv(requiredVars []string) (map[string]string, error) {
	_ = godotenv.Load()

	envVars := make(map[string]string)

	for _, key := range requiredVars {
		value := os.Getenv(key)
		if value == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", key)
		}
		envVars[key] = value
	}

	return envVars, nil
}

// Getenv returns an optional variable or fallback when it is unset
func Getenv(key, fallback string) string {
	_ = godotenv.Load()

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
