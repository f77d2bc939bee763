// Package config holds runtime configuration for the miria cart client.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	pkgconfig "github.com/samko5sam/miria/pkg/config"
)

// Storage backend names.
const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

// Config holds all configuration for the cart client.
type Config struct {
	Environment string `env:"MIRIA_ENV" envDefault:"development"`
	LogLevel    string `env:"MIRIA_LOG_LEVEL" envDefault:"info"`

	// Remote cart API
	APIBaseURL string `env:"MIRIA_API_URL" envDefault:"http://localhost:5000/api"`

	// Anonymous cart storage. The file backend keeps state under
	// StateDir; the redis backend targets RedisAddr.
	StorageBackend string `env:"MIRIA_STORAGE" envDefault:"file"`
	StateDir       string `env:"MIRIA_STATE_DIR"`

	// Redis (only used when StorageBackend is "redis")
	RedisAddr string `env:"MIRIA_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"MIRIA_REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"MIRIA_REDIS_DB" envDefault:"0"`

	// HTTP client
	HTTPTimeout time.Duration `env:"MIRIA_HTTP_TIMEOUT" envDefault:"30s"`
	MaxRetries  int           `env:"MIRIA_HTTP_MAX_RETRIES" envDefault:"3"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load miria config: %w", err)
	}
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.StateDir = filepath.Join(home, ".miria")
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageFile, StorageRedis:
	default:
		return fmt.Errorf("invalid storage backend: %q", c.StorageBackend)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base url is required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative: %d", c.MaxRetries)
	}
	return nil
}
