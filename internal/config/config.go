package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"KIGO_DATABASE_URL"`                 // empty = in-memory store with fixtures
	GRPCAddr    string `env:"KIGO_GRPC_ADDR" envDefault:":9090"` // gRPC listen address
	HTTPAddr    string `env:"KIGO_HTTP_ADDR" envDefault:":8080"` // HTTP listen address
	NATSURL     string `env:"KIGO_NATS_URL"`                     // empty = no events
	AuthToken   string `env:"KIGO_AUTH_TOKEN"`                   // empty = auth disabled
	LogLevel    string `env:"KIGO_LOG_LEVEL" envDefault:"info"`

	// Listing
	DefaultPageSize int `env:"KIGO_DEFAULT_PAGE_SIZE" envDefault:"10"`
	MaxPageSize     int `env:"KIGO_MAX_PAGE_SIZE" envDefault:"100"`

	// Sync settings
	SyncInterval   time.Duration `env:"KIGO_SYNC_INTERVAL" envDefault:"5m"` // 0 = disabled
	SyncS3Bucket   string        `env:"KIGO_SYNC_S3_BUCKET"`                // enables S3 when set
	SyncS3Endpoint string        `env:"KIGO_SYNC_S3_ENDPOINT"`              // custom endpoint for MinIO
	SyncS3Region   string        `env:"KIGO_SYNC_S3_REGION" envDefault:"us-east-1"`
	SyncS3Prefix   string        `env:"KIGO_SYNC_S3_PREFIX" envDefault:"kigo/"`
	SyncGitRepo    string        `env:"KIGO_SYNC_GIT_REPO"` // enables git when set; path to clone
	SyncGitPath    string        `env:"KIGO_SYNC_GIT_PATH" envDefault:"kigo.jsonl"`
	SyncGitBranch  string        `env:"KIGO_SYNC_GIT_BRANCH" envDefault:"main"`

	// Assistant
	SessionIdle time.Duration `env:"KIGO_SESSION_IDLE" envDefault:"30m"`
}

// Load reads the configuration from KIGO_* environment variables.
func Load() (*Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.DefaultPageSize < 1 {
		errs = append(errs, fmt.Errorf("KIGO_DEFAULT_PAGE_SIZE must be positive, got %d", c.DefaultPageSize))
	}
	if c.MaxPageSize < 1 {
		errs = append(errs, fmt.Errorf("KIGO_MAX_PAGE_SIZE must be positive, got %d", c.MaxPageSize))
	}
	if c.DefaultPageSize > c.MaxPageSize {
		errs = append(errs, fmt.Errorf("KIGO_DEFAULT_PAGE_SIZE (%d) exceeds KIGO_MAX_PAGE_SIZE (%d)", c.DefaultPageSize, c.MaxPageSize))
	}
	if c.SyncInterval < 0 {
		errs = append(errs, errors.New("KIGO_SYNC_INTERVAL must not be negative"))
	}
	if c.SessionIdle <= 0 {
		errs = append(errs, errors.New("KIGO_SESSION_IDLE must be positive"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("KIGO_LOG_LEVEL: %w", err)
	}
	return l, nil
}

// ClampPageSize applies the configured default and maximum to a requested
// page size.
func (c *Config) ClampPageSize(n int) int {
	if n < 1 {
		return c.DefaultPageSize
	}
	return min(n, c.MaxPageSize)
}
