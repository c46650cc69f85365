// Package config loads quorum run configuration from TOML or YAML files.
//
// The file format mirrors consensus.Config:
//
//	[[analysts]]
//	role = "skeptic"
//	model = "sonnet"
//	max_tokens = 1500
//	label = "Skeptic"
//	icon = "?"
//
//	[synthesizer]
//	model = "opus"
//	max_tokens = 3000
//
//	[rate_limits]
//	per_model_rpm = 10
//	global_rpm = 30
//	max_tokens_per_cycle = 50000
//	max_cost_per_cycle = 1.0
//
// Analysts are an ordered list; the engine preserves that order in its
// results. Unset rate-limit fields receive the consensus package defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/quorum/consensus"
)

// Load reads, parses, defaults, and validates the configuration at path.
// The format is chosen by extension: .toml, .yaml, or .yml.
func Load(path string) (*consensus.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes configuration data in the format indicated by ext.
func Parse(data []byte, ext string) (*consensus.Config, error) {
	var cfg consensus.Config

	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .toml, .yaml, or .yml)", ext)
	}

	cfg.RateLimits.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
