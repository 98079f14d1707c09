// Package config loads the TOML configuration shared by the command-line
// tools.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/capdesc/go-capdesc/internal/captypes"
	"github.com/capdesc/go-capdesc/internal/classifier"
	"github.com/capdesc/go-capdesc/internal/descriptor"
)

// Configuration validation errors
var (
	ErrInvalidVariant        = errors.New("invalid descriptor variant")
	ErrInvalidOverridePolicy = errors.New("invalid override policy")
	ErrInvalidWorkerCount    = errors.New("worker count must not be negative")
)

// Config is the tool configuration loaded from TOML.
type Config struct {
	// LogLevel sets the minimum structured log level (debug, info, warn, error).
	LogLevel captypes.LogLevel `toml:"log_level"`

	// Variant selects the descriptor wire format: "full" or "lean".
	Variant string `toml:"variant"`

	// OverridePolicy selects how dominant evidence affects the risk level:
	// "dominant_evidence" or "none".
	OverridePolicy string `toml:"override_policy"`

	// OverlayPath optionally points to a TOML catalog overlay.
	OverlayPath string `toml:"overlay_path"`

	// RegistryPath is the SQLite descriptor registry location.
	RegistryPath string `toml:"registry_path"`

	// WatchPaths are documentation files or directories monitored in watch mode.
	WatchPaths []string `toml:"watch_paths"`

	// WatchSettleSeconds is how long a file must stay quiet before
	// reclassification.
	WatchSettleSeconds int `toml:"watch_settle_seconds"`

	// Workers bounds batch concurrency; zero means one worker per CPU.
	Workers int `toml:"workers"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:           captypes.LogLevelInfo,
		Variant:            "full",
		OverridePolicy:     "dominant_evidence",
		RegistryPath:       "capdesc.db",
		WatchSettleSeconds: 1,
	}
}

// Load reads and validates a configuration file. Unset fields fall back to
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks all enumerated fields.
func (c *Config) Validate() error {
	if _, err := c.DescriptorVariant(); err != nil {
		return err
	}
	if _, err := c.ClassifierOverride(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, c.Workers)
	}
	if _, err := c.LogLevel.ToSlogLevel(); err != nil {
		return err
	}
	return nil
}

// DescriptorVariant maps the configured variant name to the codec variant.
func (c *Config) DescriptorVariant() (descriptor.Variant, error) {
	switch c.Variant {
	case "", "full":
		return descriptor.VariantFull, nil
	case "lean":
		return descriptor.VariantLean, nil
	default:
		return descriptor.VariantFull, fmt.Errorf("%w: %q (supported: full, lean)", ErrInvalidVariant, c.Variant)
	}
}

// ClassifierOverride maps the configured policy name to the classifier policy.
func (c *Config) ClassifierOverride() (classifier.OverridePolicy, error) {
	switch c.OverridePolicy {
	case "", "dominant_evidence":
		return classifier.OverrideDominantEvidence, nil
	case "none", "weighted-average":
		return classifier.OverrideNone, nil
	default:
		return classifier.OverrideDominantEvidence,
			fmt.Errorf("%w: %q (supported: dominant_evidence, none, weighted-average)", ErrInvalidOverridePolicy, c.OverridePolicy)
	}
}
