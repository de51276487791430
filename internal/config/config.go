package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment. Optional backends
// (Postgres, Kafka, Redis) are enabled by setting their address; when left
// empty the service falls back to in-memory equivalents.
type Config struct {
	Port         string
	DatabaseURL  string
	KafkaBrokers []string
	RedisAddr    string
	JWTSecret    string
	Env          string
}

// Load reads .env if present and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment variables")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		Env:         getEnv("ENV", "development"),
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
