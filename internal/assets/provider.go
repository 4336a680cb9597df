package assets

import (
	"context"
	"fmt"
)

// Provider resolves an asset query to a URL. Providers are swappable and
// tried in a fixed fallback order; the engine does not care which backend
// produced the URL.
type Provider interface {
	// Name returns the provider name for logging.
	Name() string

	// Resolve turns a query into an asset URL.
	Resolve(ctx context.Context, query string) (string, error)
}

// Config configures asset resolution.
type Config struct {
	Providers []string          `mapstructure:"providers"` // fallback order
	OpenAI    OpenAIConfig      `mapstructure:"openai"`
	Place     PlaceholderConfig `mapstructure:"placeholder"`
}

// OpenAIConfig configures the OpenAI image provider.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// PlaceholderConfig configures the placeholder provider.
type PlaceholderConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// DefaultConfig returns the default asset configuration.
func DefaultConfig() Config {
	return Config{
		Providers: []string{"placeholder"},
		OpenAI:    OpenAIConfig{Model: "dall-e-3"},
	}
}

// NewProvider builds the provider chain described by cfg.
func NewProvider(cfg Config) (Provider, error) {
	var chain []Provider
	for _, name := range cfg.Providers {
		switch name {
		case "openai":
			if cfg.OpenAI.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY not configured. Set environment variable or add to assets.openai.api_key in config")
			}
			chain = append(chain, NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model))
		case "placeholder":
			chain = append(chain, NewPlaceholderProvider(cfg.Place.BaseURL))
		default:
			return nil, fmt.Errorf("unknown asset provider: %s (valid: openai, placeholder)", name)
		}
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no asset providers configured")
	}
	if len(chain) == 1 {
		return chain[0], nil
	}
	return NewChain(chain...), nil
}
