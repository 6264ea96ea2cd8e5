package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	AppEnv        string `env:"APP_ENV" default:"development"`
	Port          string `env:"PORT" default:"8080"`
	StorageDriver string `env:"STORAGE_DRIVER" default:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisURL      string `env:"REDIS_URL"`
	SessionSecret string `env:"SESSION_SECRET"`
	LogLevel      string `env:"LOG_LEVEL" default:"info"`
	LogFormat     string `env:"LOG_FORMAT" default:"text"`

	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days

	AnonymousRequestQuota int           `env:"ANONYMOUS_REQUEST_QUOTA" default:"9"`
	HeadlineWindow        time.Duration `env:"HEADLINE_WINDOW" default:"96h"`

	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT" default:"1"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST" default:"5"`

	FeedsEnabled      bool          `env:"FEEDS_ENABLED" default:"false"`
	FeedInterval      time.Duration `env:"FEED_INTERVAL" default:"3h"`
	FeedTimeout       time.Duration `env:"FEED_TIMEOUT" default:"15s"`
	FeedArchiveBucket string        `env:"FEED_ARCHIVE_BUCKET"`
	SourcesFile       string        `env:"SOURCES_FILE" default:"sources.yaml"`

	AWSRegion             string `env:"AWS_REGION" default:"us-east-1"`
	SageMakerEndpointName string `env:"SAGEMAKER_ENDPOINT_NAME"`
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
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
	required := map[string]string{
		"SESSION_SECRET": cfg.SessionSecret,
	}
	if cfg.StorageDriver == StorageDriverPostgres {
		required["DATABASE_URL"] = cfg.DatabaseURL
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDriverPostgres, StorageDriverMemory, cfg.StorageDriver)
	}

	if cfg.AnonymousRequestQuota < 0 {
		return errors.New("ANONYMOUS_REQUEST_QUOTA must not be negative")
	}
	if cfg.HeadlineWindow <= 0 {
		return errors.New("HEADLINE_WINDOW must be positive")
	}
	if cfg.FeedsEnabled && cfg.FeedInterval <= 0 {
		return errors.New("FEED_INTERVAL must be positive when FEEDS_ENABLED is set")
	}

	if cfg.IsProduction() {
		if cfg.StorageDriver == StorageDriverMemory {
			return errors.New("STORAGE_DRIVER=memory is not allowed in production")
		}
		if len(cfg.SessionSecret) < 32 {
			return errors.New("SESSION_SECRET must be at least 32 characters in production")
		}
		if err := validateSSLMode(cfg.DatabaseURL); err != nil {
			return err
		}
	}

	return nil
}

func validateSSLMode(databaseURL string) error {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}

	mode := strings.ToLower(u.Query().Get("sslmode"))
	if mode == "disable" || mode == "allow" {
		return fmt.Errorf("DATABASE_URL uses sslmode=%s which is not allowed in production", mode)
	}
	return nil
}
