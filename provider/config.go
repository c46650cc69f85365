package provider

import (
	"fmt"
	"os"
	"time"
)

// Config holds configuration for creating a model provider client.
// Common fields apply to all providers; use ModelAliases to map the model
// names used in run configuration onto backend-specific identifiers.
type Config struct {
	// BaseURL is the endpoint of the backend service.
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"`

	// APIKey authenticates against the backend.
	APIKey string `json:"api_key" yaml:"api_key" toml:"api_key"`

	// Timeout is the maximum duration for a completion request.
	// 0 uses the provider default.
	Timeout time.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`

	// ModelAliases maps configured model names to the identifiers the
	// backend actually serves. Unlisted models are passed through as-is.
	ModelAliases map[string]string `json:"model_aliases" yaml:"model_aliases" toml:"model_aliases"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: 2 * time.Minute,
	}
}

// LoadFromEnv populates config fields from environment variables.
// Environment variables use the QUORUM_ prefix and take precedence over
// existing values.
//
// Supported variables:
//   - QUORUM_BASE_URL: Backend endpoint
//   - QUORUM_API_KEY: API key
//   - QUORUM_TIMEOUT: Timeout duration (e.g., "90s")
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("QUORUM_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("QUORUM_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("QUORUM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
}

// FromEnv creates a Config from environment variables with defaults.
func FromEnv() Config {
	cfg := DefaultConfig()
	cfg.LoadFromEnv()
	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	return nil
}

// ResolveModel maps a configured model name through ModelAliases.
func (c Config) ResolveModel(model string) string {
	if actual, ok := c.ModelAliases[model]; ok {
		return actual
	}
	return model
}

// WithBaseURL returns a copy of the config with the specified endpoint.
func (c Config) WithBaseURL(url string) Config {
	c.BaseURL = url
	return c
}

// WithAPIKey returns a copy of the config with the specified key.
func (c Config) WithAPIKey(key string) Config {
	c.APIKey = key
	return c
}

// WithAlias returns a copy of the config with the given alias added.
func (c Config) WithAlias(model, actual string) Config {
	aliases := make(map[string]string, len(c.ModelAliases)+1)
	for k, v := range c.ModelAliases {
		aliases[k] = v
	}
	aliases[model] = actual
	c.ModelAliases = aliases
	return c
}
