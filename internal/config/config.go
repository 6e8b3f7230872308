package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the API server.
type Config struct {
	Port    string
	DataDir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigins []string

	CacheTTL       time.Duration
	SeedSampleData bool
}

// Load reads configuration from the environment with sensible defaults.
// A local .env file is honoured in development if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnvOrDefault("PORT", "8000"),
		DataDir:        getEnvOrDefault("DATA_DIR", "./data"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		AllowedOrigins: splitOrigins(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		CacheTTL:       getEnvDuration("ANALYTICS_CACHE_TTL", 30*time.Second),
		SeedSampleData: getEnvOrDefault("SYNAPSE_SEED", "false") == "true",
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitOrigins(value string) []string {
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
