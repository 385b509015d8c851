// Package config handles configuration loading and validation for taskboard.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Paging selects how the comment pane pages through a card's comments.
type Paging string

const (
	// PagingClient fetches one large page and paginates locally.
	PagingClient Paging = "client"
	// PagingCursor fetches each window page from the server using its cursor.
	PagingCursor Paging = "cursor"
)

// IsValid reports whether p is a supported paging mode.
func (p Paging) IsValid() bool {
	switch p {
	case PagingClient, PagingCursor:
		return true
	default:
		return false
	}
}

// Config holds the application configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Comments CommentsConfig `yaml:"comments"`
	TUI      TUIConfig      `yaml:"tui"`
	Mock     MockConfig     `yaml:"mock"`
}

// APIConfig holds settings for the task board REST API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the circuit breaker wrapped around API calls.
type BreakerConfig struct {
	MaxRequests  uint32        `yaml:"max_requests"`  // requests allowed while half-open
	Interval     time.Duration `yaml:"interval"`      // closed-state counter reset period
	Timeout      time.Duration `yaml:"timeout"`       // open-state duration before half-open
	MinRequests  uint32        `yaml:"min_requests"`  // requests required before tripping
	FailureRatio float64       `yaml:"failure_ratio"` // failure ratio that trips the breaker
}

// CommentsConfig holds comment pane settings.
type CommentsConfig struct {
	PageSize  int    `yaml:"page_size"`
	FetchSize int    `yaml:"fetch_size"`
	Paging    Paging `yaml:"paging"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme string `yaml:"theme"`
	// SentinelMargin is how many rows from the bottom of the list the cursor
	// must be before the sentinel counts as visible.
	SentinelMargin int `yaml:"sentinel_margin"`
}

// MockConfig holds settings for the in-memory mock API server.
type MockConfig struct {
	Addr         string `yaml:"addr"`
	SeedComments int    `yaml:"seed_comments"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8420",
			Timeout: 10 * time.Second,
			Breaker: BreakerConfig{
				MaxRequests:  1,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				MinRequests:  5,
				FailureRatio: 0.6,
			},
		},
		Comments: CommentsConfig{
			PageSize:  3,
			FetchSize: 100,
			Paging:    PagingClient,
		},
		TUI: TUIConfig{
			Theme:          "tokyo-night",
			SentinelMargin: 0,
		},
		Mock: MockConfig{
			Addr:         "127.0.0.1:8420",
			SeedComments: 7,
		},
	}
}

// Load reads configuration from the given path.
// If configPath is empty or doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.API.Breaker.MaxRequests == 0 {
		c.API.Breaker.MaxRequests = defaults.API.Breaker.MaxRequests
	}
	if c.API.Breaker.Interval == 0 {
		c.API.Breaker.Interval = defaults.API.Breaker.Interval
	}
	if c.API.Breaker.Timeout == 0 {
		c.API.Breaker.Timeout = defaults.API.Breaker.Timeout
	}
	if c.API.Breaker.MinRequests == 0 {
		c.API.Breaker.MinRequests = defaults.API.Breaker.MinRequests
	}
	if c.API.Breaker.FailureRatio == 0 {
		c.API.Breaker.FailureRatio = defaults.API.Breaker.FailureRatio
	}

	if c.Comments.PageSize == 0 {
		c.Comments.PageSize = defaults.Comments.PageSize
	}
	if c.Comments.FetchSize == 0 {
		c.Comments.FetchSize = defaults.Comments.FetchSize
	}
	if c.Comments.Paging == "" {
		c.Comments.Paging = defaults.Comments.Paging
	}

	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}

	if c.Mock.Addr == "" {
		c.Mock.Addr = defaults.Mock.Addr
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url cannot be empty")
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}

	if c.Comments.PageSize < 1 {
		return fmt.Errorf("comments.page_size must be at least 1")
	}

	if c.Comments.FetchSize < c.Comments.PageSize {
		return fmt.Errorf("comments.fetch_size (%d) must be at least comments.page_size (%d)",
			c.Comments.FetchSize, c.Comments.PageSize)
	}

	if !c.Comments.Paging.IsValid() {
		return fmt.Errorf("comments.paging %q is invalid (valid: %s, %s)", c.Comments.Paging, PagingClient, PagingCursor)
	}

	if c.TUI.SentinelMargin < 0 {
		return fmt.Errorf("tui.sentinel_margin cannot be negative")
	}

	if c.Mock.SeedComments < 0 {
		return fmt.Errorf("mock.seed_comments cannot be negative")
	}

	return nil
}

// FetchSize returns the page size requested from the API for the configured
// paging mode.
func (c *Config) FetchSize() int {
	if c.Comments.Paging == PagingCursor {
		return c.Comments.PageSize
	}
	return c.Comments.FetchSize
}
