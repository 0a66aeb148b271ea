// Package config loads the sync-layer configuration from an optional
// YAML file with environment-variable overrides.
//
// Every timing knob defaults to the production constant; configuration
// exists for tooling and tests, not because deployments are expected to
// tune them.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the sync-layer configuration.
type Config struct {
	// Origin is the hosting page's origin; the push URL derives from it.
	Origin string `yaml:"origin" env:"HOUSEBOARD_ORIGIN"`

	// LivePath is the push-endpoint path.
	LivePath string `yaml:"livePath" env:"HOUSEBOARD_LIVE_PATH"`

	// DebounceWindow collapses same-kind notification bursts.
	DebounceWindow time.Duration `yaml:"debounceWindow" env:"HOUSEBOARD_DEBOUNCE_WINDOW"`

	// CloseRetryDelay follows an orderly connection close.
	CloseRetryDelay time.Duration `yaml:"closeRetryDelay" env:"HOUSEBOARD_CLOSE_RETRY_DELAY"`

	// ErrorRetryDelay follows a transport error.
	ErrorRetryDelay time.Duration `yaml:"errorRetryDelay" env:"HOUSEBOARD_ERROR_RETRY_DELAY"`

	// CelebrationRetryDelay re-tries a celebration while one is showing.
	CelebrationRetryDelay time.Duration `yaml:"celebrationRetryDelay" env:"HOUSEBOARD_CELEBRATION_RETRY_DELAY"`

	// RecordPath enables CBOR traffic capture when set.
	RecordPath string `yaml:"recordPath" env:"HOUSEBOARD_RECORD_PATH"`

	// Milestones overrides the threshold list per metric category.
	// Empty means the built-in table.
	Milestones map[string][]int `yaml:"milestones"`
}

// Default returns the configuration with all production defaults.
func Default() Config {
	return Config{
		LivePath:              "/live",
		DebounceWindow:        100 * time.Millisecond,
		CloseRetryDelay:       3 * time.Second,
		ErrorRetryDelay:       5 * time.Second,
		CelebrationRetryDelay: 500 * time.Millisecond,
	}
}

// Load reads configuration from a YAML file (path may be empty to skip),
// then applies environment overrides, then validates.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for impossible values.
func (c Config) Validate() error {
	if c.DebounceWindow <= 0 {
		return fmt.Errorf("debounceWindow must be positive, got %v", c.DebounceWindow)
	}
	if c.CloseRetryDelay <= 0 {
		return fmt.Errorf("closeRetryDelay must be positive, got %v", c.CloseRetryDelay)
	}
	if c.ErrorRetryDelay <= 0 {
		return fmt.Errorf("errorRetryDelay must be positive, got %v", c.ErrorRetryDelay)
	}
	if c.CelebrationRetryDelay <= 0 {
		return fmt.Errorf("celebrationRetryDelay must be positive, got %v", c.CelebrationRetryDelay)
	}
	for category, thresholds := range c.Milestones {
		if len(thresholds) == 0 {
			return fmt.Errorf("milestones.%s: empty threshold list", category)
		}
		for i := 1; i < len(thresholds); i++ {
			if thresholds[i] <= thresholds[i-1] {
				return fmt.Errorf("milestones.%s: thresholds must be strictly ascending", category)
			}
		}
	}
	return nil
}
