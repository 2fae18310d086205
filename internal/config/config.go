// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// API authentication
	APIToken string // bearer token callers must present

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache + leadership lease)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Publishing
	PublishTimeout time.Duration // per-call bound on one remote publish

	// Sweeps
	SweepInterval       time.Duration
	GenerationInterval  time.Duration
	MaintenanceInterval time.Duration
	SweepBatchSize      int
	ProcessingMaxAge    time.Duration

	// Leadership lease (multi-instance deployments)
	LeaderLeaseTTL time.Duration

	// Generation collaborator webhook; empty disables the generation sweep.
	GenerationWebhookURL string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		APIToken: os.Getenv("API_TOKEN"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "autopress"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "autopress"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		PublishTimeout: envDuration("PUBLISH_TIMEOUT", 30*time.Second),

		SweepInterval:       envDuration("SWEEP_INTERVAL", time.Minute),
		GenerationInterval:  envDuration("GENERATION_SWEEP_INTERVAL", 30*time.Second),
		MaintenanceInterval: envDuration("MAINTENANCE_INTERVAL", time.Hour),
		SweepBatchSize:      envInt("SWEEP_BATCH_SIZE", 10),
		ProcessingMaxAge:    envDuration("PROCESSING_MAX_AGE", 2*time.Hour),

		LeaderLeaseTTL: envDuration("LEADER_LEASE_TTL", 3*time.Minute),

		GenerationWebhookURL: os.Getenv("GENERATION_WEBHOOK_URL"),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.APIToken == "" {
			return nil, fmt.Errorf("API_TOKEN must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envDuration reads a Go duration from the environment, returning a
// fallback if unset or unparseable.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// envInt reads an integer from the environment, returning a fallback if
// unset or unparseable.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
