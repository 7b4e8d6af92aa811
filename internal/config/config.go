// Package config loads and validates the YAML configuration file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for jobpulse.
type Config struct {
	PollingInterval time.Duration
	MaxAgeHours     int
	Keywords        []string
	DBPath          string
	Sources         SourcesConfig
	RateLimit       RateLimitConfig
	Retry           RetryConfig
	Notification    NotificationConfig
}

// SourcesConfig lists the upstreams to pull from.
type SourcesConfig struct {
	Greenhouse []BoardConfig `yaml:"greenhouse"`
	Lever      []BoardConfig `yaml:"lever"`
	Feeds      []FeedConfig  `yaml:"feeds"`
}

// BoardConfig describes one Greenhouse board or Lever account.
type BoardConfig struct {
	Token   string `yaml:"token"`   // board token / company slug
	Company string `yaml:"company"` // display name used when the source lacks one
	Enabled bool   `yaml:"enabled"`
}

// FeedConfig describes one RSS feed.
type FeedConfig struct {
	Tag     string `yaml:"tag"` // source tag, e.g. "linkedin_rss"
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// RateLimitConfig controls provider-level throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// RetryConfig controls the transient-failure retry decorator.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// NotificationConfig selects the notifier.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// rawConfig mirrors the YAML layout (snake_case, durations as strings).
type rawConfig struct {
	PollingInterval string             `yaml:"polling_interval"`
	MaxAgeHours     int                `yaml:"max_age_hours"`
	Keywords        []string           `yaml:"keywords"`
	DBPath          string             `yaml:"db_path"`
	Sources         SourcesConfig      `yaml:"sources"`
	RateLimit       rawRateLimit       `yaml:"rate_limit"`
	Retry           rawRetry           `yaml:"retry"`
	Notification    NotificationConfig `yaml:"notification"`
}

type rawRateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type rawRetry struct {
	MaxRetries int    `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

// Load reads the YAML file at path, expands environment variables,
// applies defaults, validates, and returns the config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := time.Hour
	if raw.PollingInterval != "" {
		interval, err = time.ParseDuration(raw.PollingInterval)
		if err != nil {
			return nil, fmt.Errorf("parse polling_interval %q: %w", raw.PollingInterval, err)
		}
	}

	maxAge := raw.MaxAgeHours
	if maxAge == 0 {
		maxAge = 24
	}

	dbPath := raw.DBPath
	if dbPath == "" {
		dbPath = "jobpulse.db"
	}

	reqPerSec := raw.RateLimit.RequestsPerSecond
	if reqPerSec == 0 {
		reqPerSec = 1
	}
	burst := raw.RateLimit.Burst
	if burst == 0 {
		burst = 2
	}

	maxRetries := raw.Retry.MaxRetries
	if maxRetries == 0 {
		maxRetries = 2
	}
	baseDelay := 5 * time.Second
	if raw.Retry.BaseDelay != "" {
		baseDelay, err = time.ParseDuration(raw.Retry.BaseDelay)
		if err != nil {
			return nil, fmt.Errorf("parse retry.base_delay %q: %w", raw.Retry.BaseDelay, err)
		}
	}

	cfg := &Config{
		PollingInterval: interval,
		MaxAgeHours:     maxAge,
		Keywords:        raw.Keywords,
		DBPath:          dbPath,
		Sources:         raw.Sources,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: reqPerSec,
			Burst:             burst,
		},
		Retry: RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  baseDelay,
		},
		Notification: raw.Notification,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnabledSourceCount reports how many sources are switched on.
func (c *Config) EnabledSourceCount() int {
	n := 0
	for _, b := range c.Sources.Greenhouse {
		if b.Enabled {
			n++
		}
	}
	for _, b := range c.Sources.Lever {
		if b.Enabled {
			n++
		}
	}
	for _, f := range c.Sources.Feeds {
		if f.Enabled {
			n++
		}
	}
	return n
}

func validate(cfg *Config) error {
	if cfg.PollingInterval <= 0 {
		return fmt.Errorf("polling_interval must be positive, got %v", cfg.PollingInterval)
	}
	if cfg.MaxAgeHours <= 0 {
		return fmt.Errorf("max_age_hours must be positive, got %d", cfg.MaxAgeHours)
	}
	if cfg.EnabledSourceCount() == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}
	for _, b := range cfg.Sources.Greenhouse {
		if b.Enabled && b.Token == "" {
			return fmt.Errorf("greenhouse source missing token")
		}
	}
	for _, b := range cfg.Sources.Lever {
		if b.Enabled && b.Token == "" {
			return fmt.Errorf("lever source missing token")
		}
	}
	for _, f := range cfg.Sources.Feeds {
		if f.Enabled && (f.Tag == "" || f.URL == "") {
			return fmt.Errorf("feed source requires tag and url")
		}
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}

	return nil
}
