// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/Sternrassler/reqres-client/pkg/client"
	"github.com/Sternrassler/reqres-client/pkg/logging"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config is loaded once at startup and not changed afterwards.
type Config struct {
	Reqres struct {
		BaseURL         string        `env:"REQRES_BASE_URL,required,notEmpty"`
		APIKey          string        `env:"REQRES_API_KEY"`
		UserAgent       string        `env:"REQRES_USER_AGENT" envDefault:"reqres-client/0.1.0"`
		CacheTTLSeconds int           `env:"REQRES_CACHE_TTL_SECONDS" envDefault:"300"`
		Timeout         time.Duration `env:"REQRES_HTTP_TIMEOUT" envDefault:"30s"`
	}

	Retry struct {
		MaxAttempts    int           `env:"REQRES_RETRY_MAX_ATTEMPTS" envDefault:"4"`
		InitialBackoff time.Duration `env:"REQRES_RETRY_INITIAL_BACKOFF" envDefault:"2s"`
		MaxBackoff     time.Duration `env:"REQRES_RETRY_MAX_BACKOFF" envDefault:"30s"`
	}

	Cache struct {
		Backend string `env:"CACHE_BACKEND" envDefault:"memory"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
		Prefix   string `env:"REDIS_KEY_PREFIX" envDefault:"reqres:"`
	}

	Log struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
	}

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
}

// Load reads an optional .env file from the working directory and then the
// environment. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse(env.Options{})
}

// Parse reads configuration using opts, which tests use to supply an
// environment map instead of the process environment.
func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the struct tags cannot express.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Reqres.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("REQRES_BASE_URL must be an absolute URL (got %q)", c.Reqres.BaseURL)
	}
	if c.Reqres.CacheTTLSeconds <= 0 {
		return fmt.Errorf("REQRES_CACHE_TTL_SECONDS must be positive (got %d)", c.Reqres.CacheTTLSeconds)
	}
	if c.Reqres.Timeout <= 0 {
		return fmt.Errorf("REQRES_HTTP_TIMEOUT must be positive (got %v)", c.Reqres.Timeout)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("REQRES_RETRY_MAX_ATTEMPTS must be >= 1 (got %d)", c.Retry.MaxAttempts)
	}
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("CACHE_BACKEND must be %q or %q (got %q)", CacheBackendMemory, CacheBackendRedis, c.Cache.Backend)
	}
	return nil
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Reqres.CacheTTLSeconds) * time.Second
}

// ClientConfig builds the transport configuration.
func (c *Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig(c.Reqres.BaseURL)
	cfg.APIKey = c.Reqres.APIKey
	cfg.UserAgent = c.Reqres.UserAgent
	cfg.Timeout = c.Reqres.Timeout
	cfg.Retry.MaxAttempts = c.Retry.MaxAttempts
	cfg.Retry.InitialBackoff = c.Retry.InitialBackoff
	cfg.Retry.MaxBackoff = c.Retry.MaxBackoff
	return cfg
}

// LoggingConfig builds the logger configuration.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.Level(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}
