// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DefaultSecretKey is the signing secret used when SECRET_KEY is unset.
// Tokens signed with it are forgeable; it is only accepted in development.
const DefaultSecretKey = "your-secret-key"

// Supported user store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
	StoreDriverMemory   = "memory"
)

// Validation errors.
var (
	ErrWeakSecret        = errors.New("SECRET_KEY must be set to a non-default value outside development")
	ErrUnknownDriver     = errors.New("unknown STORE_DRIVER")
	ErrMissingStoreURL   = errors.New("store driver requires a connection URL")
	ErrInvalidTokenTTL   = errors.New("ACCESS_TOKEN_TTL must be positive")
	ErrInvalidHashParams = errors.New("HASH_* parameters must be positive")
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8000"`

	// Token signing
	SecretKey      string        `env:"SECRET_KEY" envDefault:"your-secret-key"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"60m"`

	// User store
	StoreDriver   string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisURL      string `env:"REDIS_URL"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Password hashing (Argon2id)
	HashMemoryKiB  uint32 `env:"HASH_MEMORY_KIB" envDefault:"65536"`
	HashIterations uint32 `env:"HASH_ITERATIONS" envDefault:"3"`
	HashThreads    uint8  `env:"HASH_THREADS" envDefault:"4"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// UsesDefaultSecret reports whether tokens would be signed with the fallback secret.
func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == "" || c.SecretKey == DefaultSecretKey
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks cross-field constraints that env tags cannot express.
func (c *Config) Validate() error {
	if c.UsesDefaultSecret() && !c.IsDevelopment() {
		return ErrWeakSecret
	}

	if c.AccessTokenTTL <= 0 {
		return ErrInvalidTokenTTL
	}

	if c.HashMemoryKiB == 0 || c.HashIterations == 0 || c.HashThreads == 0 {
		return ErrInvalidHashParams
	}

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL for %q", ErrMissingStoreURL, c.StoreDriver)
		}
	case StoreDriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: REDIS_URL for %q", ErrMissingStoreURL, c.StoreDriver)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.StoreDriver)
	}

	return nil
}

// Load reads an optional .env file, parses environment variables and
// validates the result.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = DefaultSecretKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
