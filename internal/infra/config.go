package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting of the order service. Values are loaded from
// YAML first and can be overridden through environment variables, so
// deployments never need to bake endpoints into the file.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Pricing struct {
		URL        string `yaml:"url"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"pricing"`

	Audit struct {
		URL              string `yaml:"url"`
		TimeoutSec       int    `yaml:"timeout_sec"`
		RetryIntervalSec int    `yaml:"retry_interval_sec"`
	} `yaml:"audit"`

	Notification struct {
		URL        string `yaml:"url"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"notification"`

	Cleanup struct {
		Enabled  bool   `yaml:"enabled"`
		Interval string `yaml:"interval"` // Go duration, e.g. "24h"
	} `yaml:"cleanup"`

	Logging struct {
		Level        string `yaml:"level"`
		CollectorURL string `yaml:"collector_url"` // optional log shipper target
	} `yaml:"logging"`
}

// LoadConfig reads and validates the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/orders.db"
	}
	if c.Pricing.TimeoutSec <= 0 {
		c.Pricing.TimeoutSec = 5
	}
	if c.Audit.TimeoutSec <= 0 {
		c.Audit.TimeoutSec = 3
	}
	if c.Audit.RetryIntervalSec <= 0 {
		c.Audit.RetryIntervalSec = 60
	}
	if c.Notification.TimeoutSec <= 0 {
		c.Notification.TimeoutSec = 3
	}
	if c.Cleanup.Interval == "" {
		c.Cleanup.Interval = "24h"
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Pricing.URL == "" {
		return fmt.Errorf("pricing URL is required")
	}
	if c.Audit.URL == "" {
		return fmt.Errorf("audit URL is required")
	}
	if c.Notification.URL == "" {
		return fmt.Errorf("notification URL is required")
	}
	if _, err := time.ParseDuration(c.Cleanup.Interval); err != nil {
		return fmt.Errorf("invalid cleanup interval %q: %w", c.Cleanup.Interval, err)
	}
	return nil
}

// CleanupInterval returns the parsed sweeper interval. Validate has already
// checked the format.
func (c *Config) CleanupInterval() time.Duration {
	d, _ := time.ParseDuration(c.Cleanup.Interval)
	return d
}

// overrideWithEnv overrides settings from environment variables when present.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("ENERGYTRADE_SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if path := os.Getenv("ENERGYTRADE_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if url := os.Getenv("ENERGYTRADE_PRICING_URL"); url != "" {
		cfg.Pricing.URL = url
	}
	if url := os.Getenv("ENERGYTRADE_AUDIT_URL"); url != "" {
		cfg.Audit.URL = url
	}
	if url := os.Getenv("ENERGYTRADE_NOTIFICATION_URL"); url != "" {
		cfg.Notification.URL = url
	}
	if url := os.Getenv("ENERGYTRADE_LOG_COLLECTOR_URL"); url != "" {
		cfg.Logging.CollectorURL = url
	}
	if raw := os.Getenv("ENERGYTRADE_CLEANUP_ENABLED"); raw != "" {
		if enabled, err := strconv.ParseBool(raw); err == nil {
			cfg.Cleanup.Enabled = enabled
		}
	}
	if interval := os.Getenv("ENERGYTRADE_CLEANUP_INTERVAL"); interval != "" {
		cfg.Cleanup.Interval = interval
	}
	if raw := os.Getenv("ENERGYTRADE_AUDIT_RETRY_INTERVAL_SEC"); raw != "" {
		if sec, err := strconv.Atoi(raw); err == nil && sec > 0 {
			cfg.Audit.RetryIntervalSec = sec
		}
	}
}
