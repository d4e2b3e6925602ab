// Package config assembles the client's runtime settings from layered
// sources. Later sources win: defaults, then an optional .env file, then a
// JSON config file, then environment variables, then command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds runtime settings for the MindSpend client.
type Config struct {
	// ServiceURL is the base URL of the hosted auth+database service.
	ServiceURL string `env:"MINDSPEND_SERVICE_URL"`
	// ServiceKey is the public project key sent with every request.
	ServiceKey string `env:"MINDSPEND_SERVICE_KEY"`
	// AccountAPIURL is the base URL of the companion account backend.
	AccountAPIURL string `env:"MINDSPEND_ACCOUNT_API_URL"`

	// CacheDBPath is the SQLite file backing the local cache.
	CacheDBPath string `env:"MINDSPEND_CACHE_DB"`

	// HTTPTimeout bounds each request, including the one automatic
	// refresh-and-retry.
	HTTPTimeout time.Duration `env:"MINDSPEND_HTTP_TIMEOUT"`

	LogLevel string `env:"MINDSPEND_LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServiceURL = "http://127.0.0.1:8000"
	c.AccountAPIURL = "http://127.0.0.1:8080"
	c.CacheDBPath = "mindspend.db"
	c.HTTPTimeout = 15 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config by applying every layer in order.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	// A missing .env file is the normal case outside development.
	_ = godotenv.Load()

	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	parseFlags(cfg)

	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("service key is required (MINDSPEND_SERVICE_KEY)")
	}
	return cfg, nil
}
