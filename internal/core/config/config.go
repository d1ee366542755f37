// Package config handles configuration loading and validation for
// asmlens.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/hartfelt/asmlens/internal/core/listing"
)

// Config holds the application configuration.
type Config struct {
	Listing   ListingConfig `yaml:"listing"`
	DimUnused *bool         `yaml:"dim_unused"` // nil = default (on)
	Rules     []Rule        `yaml:"rules"`
	Theme     string        `yaml:"theme"`
}

// ListingConfig controls how listings are generated and parsed.
type ListingConfig struct {
	// Command is an argv template run to produce the listing; the
	// {src} placeholder is replaced with the source file path.
	Command string `yaml:"command"`
	// Format selects annotation parsing: auto, gas, objdump, plain.
	Format listing.Format `yaml:"format"`
}

// Rule overrides per-document settings for paths matching a doublestar
// glob pattern. Later rules win.
type Rule struct {
	Pattern   string `yaml:"pattern"`
	DimUnused *bool  `yaml:"dim_unused"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Listing: ListingConfig{
			Command: "cc -S -g -O1 -o - {src}",
			Format:  listing.FormatAuto,
		},
		Theme: "tokyo-night",
	}
}

// Load reads configuration from path. A missing file (or empty path)
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills in zero values left by a partial config file.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Listing.Command == "" {
		c.Listing.Command = defaults.Listing.Command
	}
	if c.Listing.Format == "" {
		c.Listing.Format = defaults.Listing.Format
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
}

// DimUnusedFor resolves the dim-unused flag for one source document.
// The top-level setting (default on) applies unless a matching rule
// overrides it; the last matching rule wins.
func (c *Config) DimUnusedFor(path string) bool {
	enabled := true
	if c.DimUnused != nil {
		enabled = *c.DimUnused
	}

	slash := filepath.ToSlash(path)
	for _, rule := range c.Rules {
		if rule.DimUnused == nil {
			continue
		}
		ok, err := doublestar.Match(rule.Pattern, slash)
		if err != nil || !ok {
			// Also try matching against the basename so simple
			// patterns like "*.s" apply to absolute paths.
			ok, err = doublestar.Match(rule.Pattern, filepath.Base(slash))
			if err != nil || !ok {
				continue
			}
		}
		enabled = *rule.DimUnused
	}
	return enabled
}
