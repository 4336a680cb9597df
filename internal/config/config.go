// Package config loads deckstream configuration from a YAML file in the
// XDG config directory, with environment-variable fallbacks for API keys.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/marqview/deckstream/internal/assets"
	"github.com/marqview/deckstream/internal/persist"
)

type Config struct {
	Engine      EngineConfig   `mapstructure:"engine"`
	Assets      assets.Config  `mapstructure:"assets"`
	Persistence persist.Config `mapstructure:"persistence"`
}

// EngineConfig tunes the reconciliation core.
type EngineConfig struct {
	// SuppressionWindowMs is how long stream merges are discarded after a
	// proposal commit or undo. The source value is empirical; treat it as
	// a tunable, not a constant.
	SuppressionWindowMs int `mapstructure:"suppression_window_ms"`

	// FrameIntervalMs is the scheduler's rendering-frame cadence.
	FrameIntervalMs int `mapstructure:"frame_interval_ms"`
}

// SuppressionWindow returns the window as a duration.
func (c EngineConfig) SuppressionWindow() time.Duration {
	return time.Duration(c.SuppressionWindowMs) * time.Millisecond
}

// FrameInterval returns the frame cadence as a duration.
func (c EngineConfig) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}

// GetConfigDir returns the XDG config directory for deckstream.
func GetConfigDir() (string, error) {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "deckstream"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "deckstream"), nil
}

func Load() (*Config, error) {
	configPath, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath(".")

	// Set defaults
	viper.SetDefault("engine.suppression_window_ms", 5000)
	viper.SetDefault("engine.frame_interval_ms", 16)
	viper.SetDefault("assets.providers", []string{"placeholder"})
	viper.SetDefault("assets.openai.model", "dall-e-3")
	viper.SetDefault("persistence.enabled", true)

	// Read config file (optional - won't error if missing)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// API keys fall back to the environment.
	if cfg.Assets.OpenAI.APIKey == "" {
		cfg.Assets.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return &cfg, nil
}
