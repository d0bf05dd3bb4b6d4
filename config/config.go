package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	defaultPort     = "8080"
	defaultSeedPath = "celebrities.json"
	defaultAdultAge = 18
)

type Config struct {
	// HTTP listen port
	Port string

	// database DSN; the default keeps the roster in memory only
	DatabaseDSN string

	// seed dataset loaded once at process start
	SeedPath string

	// minimum computed age required to edit a record
	AdultAge int

	// origins allowed to call the API (the app's dev server, usually)
	AllowedOrigins []string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	origins := strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:8081"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	cfg := Config{
		Port:           getEnvOrDefault("PORT", defaultPort),
		DatabaseDSN:    getEnvOrDefault("DATABASE_DSN", ""),
		SeedPath:       getEnvOrDefault("SEED_PATH", defaultSeedPath),
		AdultAge:       getEnvIntOrDefault("ADULT_AGE", defaultAdultAge),
		AllowedOrigins: origins,
	}

	return cfg, nil
}
