package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	ServerPort       string
	BaseURL          string
	FrontendURL      string
	EnableHSTS       bool
	RedisURL         string
	RateLimitEnabled bool
	RateLimitDefault string
	RabbitMQURL      string
	RabbitMQPrefetch int
	WorkerDebugMode  bool
	ServerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string
	OTELSampleRatio  float64

	FakeUserCount int
	FakeDataSeed  uint64

	AdminTokenSecret string
	AdminTokenIssuer string
	AdminTokenTTL    time.Duration

	RequestLogRetention time.Duration

	LogFile      string
	LogMaxSizeMB int
}

// Load loads configuration from environment variables.
// A .env file in the working directory is read first if present; variables
// already set in the environment take precedence over it.
func Load() (*Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		BaseURL:             getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:          getEnvBool("ENABLE_HSTS", false),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RateLimitEnabled:    getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitDefault:    getEnv("RATE_LIMIT_DEFAULT", "10-S"),
		RabbitMQURL:         getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch:    getEnvInt("RABBITMQ_PREFETCH", 1),
		WorkerDebugMode:     getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:     getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:         getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:        getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELSampleRatio:     getEnvFloat("OTEL_SAMPLE_RATIO", 1),
		FakeUserCount:       getEnvInt("FAKE_USER_COUNT", 10),
		FakeDataSeed:        uint64(getEnvInt("FAKE_DATA_SEED", 42)),
		AdminTokenSecret:    getEnv("ADMIN_TOKEN_SECRET", ""),
		AdminTokenIssuer:    getEnv("ADMIN_TOKEN_ISSUER", "fake-api"),
		AdminTokenTTL:       getEnvDuration("ADMIN_TOKEN_TTL", 12*time.Hour),
		RequestLogRetention: getEnvDuration("REQUEST_LOG_RETENTION", 30*24*time.Hour),
		LogFile:             getEnv("LOG_FILE", ""),
		LogMaxSizeMB:        getEnvInt("LOG_MAX_SIZE_MB", 100),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.FakeUserCount < 1 {
		return nil, fmt.Errorf("FAKE_USER_COUNT must be at least 1, got %d", cfg.FakeUserCount)
	}

	return cfg, nil
}

// RequireQueue reports an error when the job queue is not configured.
// The worker cannot run without it; the server falls back to direct writes.
func (c *Config) RequireQueue() error {
	if c.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL is required for the request log worker")
	}
	return nil
}

// AdminEnabled reports whether the admin API should be mounted.
func (c *Config) AdminEnabled() bool {
	return c.AdminTokenSecret != ""
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
