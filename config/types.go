package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	GoogleBooks GoogleBooksConfig `mapstructure:"google_books"`
	Governor    GovernorConfig    `mapstructure:"governor"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Server      ServerConfig      `mapstructure:"server"`
	Filter      FilterConfig      `mapstructure:"filter"`
	Display     DisplayConfig     `mapstructure:"display"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// GoogleBooksConfig holds the volumes API connection details
type GoogleBooksConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Language   string        `mapstructure:"language"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// GovernorConfig tunes the outbound request governor
type GovernorConfig struct {
	MinInterval    time.Duration `mapstructure:"min_interval"`
	Cooldown       time.Duration `mapstructure:"cooldown"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
}

// CatalogConfig locates the collection file and tunes cover refreshes
type CatalogConfig struct {
	Path                 string        `mapstructure:"path"`
	CoverConcurrency     int           `mapstructure:"cover_concurrency"`
	CoverRefreshInterval time.Duration `mapstructure:"cover_refresh_interval"`
}

// ServerConfig contains the HTTP API settings
type ServerConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	// RateLimit is the number of requests allowed per client IP and minute; 0 disables it
	RateLimit int `mapstructure:"rate_limit"`
}

// FilterConfig contains named filter definitions
type FilterConfig map[string]string

// DisplayConfig contains console output settings
type DisplayConfig struct {
	ShowDetails bool `mapstructure:"show_details"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
