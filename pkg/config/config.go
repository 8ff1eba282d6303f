package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "default-jwt-secret-key"

// ErrInsecureJWTSecret is returned when production runs with the default secret.
var ErrInsecureJWTSecret = errors.New("JWT_SECRET_KEY must be set in production")

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Database
	DatabaseURL      string
	DatabaseDriver   string // empty or "auto" resolves from DatabaseURL
	SQLitePath       string
	DatabaseMaxConns int

	// LocalMode: no DATABASE_URL, so SQLite at SQLitePath, migrated on start.
	LocalMode bool

	// Redis
	RedisURL        string
	MeetingCacheTTL time.Duration

	// RabbitMQ
	RabbitMQURL             string
	BreakerFailureThreshold int
	BreakerTimeout          time.Duration

	// HTTP
	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	AllowedOrigins   []string
	RateLimitRPS     float64
	RateLimitBurst   int

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// Outbox
	OutboxPollInterval    time.Duration
	OutboxBatchSize       int
	OutboxMaxRetries      int
	OutboxRetentionDays   int
	OutboxCleanupInterval time.Duration

	// Worker
	WorkerHealthAddr string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	databaseURL := getEnv("DATABASE_URL", "")

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),

		DatabaseURL:      databaseURL,
		DatabaseDriver:   getEnv("DATABASE_DRIVER", ""),
		SQLitePath:       getEnv("SQLITE_PATH", defaultSQLitePath()),
		DatabaseMaxConns: getIntEnv("DATABASE_MAX_CONNS", 10),

		RedisURL:        getEnv("REDIS_URL", ""),
		MeetingCacheTTL: getDurationEnv("MEETING_CACHE_TTL", 5*time.Minute),

		RabbitMQURL:             getEnv("RABBITMQ_URL", ""),
		BreakerFailureThreshold: getIntEnv("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerTimeout:          getDurationEnv("BREAKER_TIMEOUT", 30*time.Second),

		HTTPAddr:         getEnv("HTTP_ADDR", "0.0.0.0:8080"),
		HTTPReadTimeout:  getDurationEnv("HTTP_READ_TIMEOUT", 15*time.Second),
		HTTPWriteTimeout: getDurationEnv("HTTP_WRITE_TIMEOUT", 15*time.Second),
		AllowedOrigins:   getListEnv("ALLOWED_ORIGINS"),
		RateLimitRPS:     getFloatEnv("RATE_LIMIT_RPS", 10),
		RateLimitBurst:   getIntEnv("RATE_LIMIT_BURST", 20),

		JWTSecret: getEnv("JWT_SECRET_KEY", DefaultJWTSecret),
		JWTTTL:    getDurationEnv("JWT_TTL", 30*time.Minute),

		OutboxPollInterval:    getDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond),
		OutboxBatchSize:       getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:      getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays:   getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval: getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),
	}
	cfg.LocalMode = databaseURL == ""

	return cfg, nil
}

// Validate rejects settings that are unsafe for the current environment.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		return ErrInsecureJWTSecret
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".quorum", "data.db")
	}
	return filepath.Join(home, ".quorum", "data.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
