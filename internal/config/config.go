// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package config loads widgetctl settings from config.toml and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment overrides.
const (
	EnvWidgetsDir = "WIDGETCTL_WIDGETS_DIR"
	EnvIndexURL   = "WIDGETCTL_INDEX_URL"
	EnvLanguage   = "WIDGETCTL_LANG"
)

// Defaults.
const (
	DefaultIndexURL = "https://widgets.pock.app/index.toml"
	DefaultTimeout  = 3 * time.Minute
	DefaultCacheTTL = 30 * time.Minute
)

// ErrInvalidConfig is returned when a loaded value is unusable.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds widgetctl settings.
type Config struct {
	WidgetsDir string   `toml:"widgets_dir"`
	IndexURL   string   `toml:"index_url"`
	Timeout    Duration `toml:"timeout"`
	CacheTTL   Duration `toml:"cache_ttl"`
	Language   string   `toml:"language"`
	StateDir   string   `toml:"state_dir"`
}

// Duration is a time.Duration that reads from TOML strings like "90s".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %w", ErrInvalidConfig, string(text), err)
	}

	*d = Duration(parsed)

	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		WidgetsDir: GetWidgetsDir(),
		IndexURL:   DefaultIndexURL,
		Timeout:    Duration(DefaultTimeout),
		CacheTTL:   Duration(DefaultCacheTTL),
		StateDir:   GetStateDir(),
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error. An empty path selects the default location.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with a custom environment lookup for testing.
func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = GetConfigPath()
	}

	// #nosec G304 -- path is the user's config file
	data, err := os.ReadFile(path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if value := getenv(EnvWidgetsDir); value != "" {
		cfg.WidgetsDir = value
	}

	if value := getenv(EnvIndexURL); value != "" {
		cfg.IndexURL = value
	}

	if value := getenv(EnvLanguage); value != "" {
		cfg.Language = value
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required settings are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.WidgetsDir) == "" {
		return fmt.Errorf("%w: widgets_dir is empty", ErrInvalidConfig)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("%w: cache_ttl must be positive", ErrInvalidConfig)
	}

	return nil
}
