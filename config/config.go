package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BDSHELF_GOOGLE_BOOKS_API_KEY
const EnvPrefix = "BDSHELF"

// Load loads the configuration. An explicit configPath must exist; without
// one the standard locations are searched and defaults are used when no file
// is found.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if dir := homeConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}

		// Check /etc
		v.AddConfigPath("/etc/bdshelf/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func homeConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".bdshelf")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Google Books defaults
	v.SetDefault("google_books.base_url", "https://www.googleapis.com/books/v1")
	v.SetDefault("google_books.api_key", "")
	v.SetDefault("google_books.language", "fr")
	v.SetDefault("google_books.max_results", 20)
	v.SetDefault("google_books.timeout", "30s")

	// Governor defaults
	v.SetDefault("governor.min_interval", "600ms")
	v.SetDefault("governor.cooldown", "60s")
	v.SetDefault("governor.max_attempts", 3)
	v.SetDefault("governor.attempt_timeout", "30s")

	// Catalog defaults
	catalogPath := "catalog.yaml"
	if dir := homeConfigDir(); dir != "" {
		catalogPath = filepath.Join(dir, "catalog.yaml")
	}
	v.SetDefault("catalog.path", catalogPath)
	v.SetDefault("catalog.cover_concurrency", 4)
	v.SetDefault("catalog.cover_refresh_interval", "0s")

	// Server defaults
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 120)

	// Display defaults
	v.SetDefault("display.show_details", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.GoogleBooks.BaseURL == "" {
		return fmt.Errorf("google_books.base_url is required")
	}

	if cfg.GoogleBooks.MaxResults < 1 || cfg.GoogleBooks.MaxResults > 40 {
		return fmt.Errorf("google_books.max_results must be between 1 and 40, got %d", cfg.GoogleBooks.MaxResults)
	}

	if cfg.GoogleBooks.Timeout <= 0 {
		return fmt.Errorf("google_books.timeout must be positive")
	}

	if cfg.Governor.MinInterval <= 0 {
		return fmt.Errorf("governor.min_interval must be positive")
	}

	if cfg.Governor.Cooldown < 0 {
		return fmt.Errorf("governor.cooldown must not be negative")
	}

	if cfg.Governor.MaxAttempts < 1 {
		return fmt.Errorf("governor.max_attempts must be at least 1, got %d", cfg.Governor.MaxAttempts)
	}

	if cfg.Governor.AttemptTimeout < 0 {
		return fmt.Errorf("governor.attempt_timeout must not be negative")
	}

	if cfg.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}

	if cfg.Catalog.CoverRefreshInterval < 0 {
		return fmt.Errorf("catalog.cover_refresh_interval must not be negative")
	}

	if cfg.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}

	for name, expression := range cfg.Filter {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter %q has an empty expression", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
