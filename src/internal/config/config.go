package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Port string
	Env  string

	Backend     string
	DatabaseURL string
	Redis       RedisConfig
	KeyPrefix   string

	StoreLatency time.Duration
	ResetOnStart bool
	DefaultRows  int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	latency, err := time.ParseDuration(getEnv("CRM_STORE_LATENCY", "300ms"))
	if err != nil || latency < 0 {
		return nil, fmt.Errorf("CRM_STORE_LATENCY: invalid duration %q", os.Getenv("CRM_STORE_LATENCY"))
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	rows, err := strconv.Atoi(getEnv("CRM_DEFAULT_ROWS", "10"))
	if err != nil || rows <= 0 {
		return nil, fmt.Errorf("CRM_DEFAULT_ROWS: must be a positive integer")
	}
	reset, err := strconv.ParseBool(getEnv("CRM_RESET_ON_START", "false"))
	if err != nil {
		return nil, fmt.Errorf("CRM_RESET_ON_START: %w", err)
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Backend:     getEnv("CRM_BACKEND", BackendMemory),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://pguser:pgpass@db:5432/crmdb?sslmode=disable"),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		KeyPrefix: getEnv("CRM_KEY_PREFIX", "synergy:"),

		StoreLatency: latency,
		ResetOnStart: reset,
		DefaultRows:  rows,
	}

	switch cfg.Backend {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		return nil, fmt.Errorf("CRM_BACKEND: unknown backend %q", cfg.Backend)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
