package openai

import "github.com/randalmurphal/quorum/provider"

func init() {
	provider.Register("openai", func(cfg provider.Config) (provider.Client, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return NewClientWithConfig(cfg), nil
	})
}
