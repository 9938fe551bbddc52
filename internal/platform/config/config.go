package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"

	ProviderMock   = "mock"
	ProviderRemote = "remote"
)

type Config struct {
	AppEnv        string        `env:"APP_ENV" default:"development"`
	Port          string        `env:"PORT" default:"8080"`
	LogLevel      string        `env:"LOG_LEVEL" default:"info"`
	LogFormat     string        `env:"LOG_FORMAT" default:"text"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"720h"` // 30 days

	StorageBackend string `env:"STORAGE_BACKEND" default:"memory"`
	StorageDir     string `env:"STORAGE_DIR" default:"./data"`
	RedisURL       string `env:"REDIS_URL"`
	DatabaseURL    string `env:"DATABASE_URL"`

	// Hex-encoded 32-byte key; when set, persisted sessions are sealed with AES-256-GCM.
	StorageEncryptionKey string `env:"STORAGE_ENCRYPTION_KEY"`

	Provider        string        `env:"PROVIDER" default:"mock"`
	ProviderURL     string        `env:"PROVIDER_URL"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" default:"10s"`
	MockLoginDelay  time.Duration `env:"MOCK_LOGIN_DELAY" default:"360ms"`
	MockFetchDelay  time.Duration `env:"MOCK_FETCH_DELAY" default:"480ms"`

	ConsoleIdleTimeout time.Duration `env:"CONSOLE_IDLE_TIMEOUT" default:"30m"`
	LoginRateLimit     float64       `env:"LOGIN_RATE_LIMIT" default:"1"`
	LoginRateBurst     int           `env:"LOGIN_RATE_BURST" default:"5"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(cfg.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters")
	}

	switch cfg.StorageBackend {
	case StorageMemory, StorageFile:
	case StorageRedis:
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is required when STORAGE_BACKEND=redis")
		}
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of memory, file, redis, postgres, got %q", cfg.StorageBackend)
	}

	switch cfg.Provider {
	case ProviderMock:
	case ProviderRemote:
		if cfg.ProviderURL == "" {
			return errors.New("PROVIDER_URL is required when PROVIDER=remote")
		}
	default:
		return fmt.Errorf("PROVIDER must be mock or remote, got %q", cfg.Provider)
	}

	if cfg.StorageEncryptionKey != "" {
		if _, err := hex.DecodeString(cfg.StorageEncryptionKey); err != nil || len(cfg.StorageEncryptionKey) != 64 {
			return errors.New("STORAGE_ENCRYPTION_KEY must be 64 hex characters")
		}
	}

	if cfg.LoginRateLimit <= 0 || cfg.LoginRateBurst < 1 {
		return errors.New("LOGIN_RATE_LIMIT must be positive and LOGIN_RATE_BURST at least 1")
	}
	if cfg.ConsoleIdleTimeout <= 0 {
		return errors.New("CONSOLE_IDLE_TIMEOUT must be positive")
	}

	return nil
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
