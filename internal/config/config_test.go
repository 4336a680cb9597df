package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func loadFrom(t *testing.T, yaml string) *Config {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XDG_CONFIG_HOME", dir)
	// Config lives at $XDG_CONFIG_HOME/deckstream/config.yaml.
	if err := os.MkdirAll(filepath.Join(dir, "deckstream"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(filepath.Join(dir, "config.yaml"), filepath.Join(dir, "deckstream", "config.yaml")); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := loadFrom(t, "")

	if got := cfg.Engine.SuppressionWindow(); got != 5*time.Second {
		t.Errorf("suppression window = %v, want 5s", got)
	}
	if got := cfg.Engine.FrameInterval(); got != 16*time.Millisecond {
		t.Errorf("frame interval = %v, want 16ms", got)
	}
	if len(cfg.Assets.Providers) != 1 || cfg.Assets.Providers[0] != "placeholder" {
		t.Errorf("default providers = %v", cfg.Assets.Providers)
	}
	if !cfg.Persistence.Enabled {
		t.Error("persistence should default to enabled")
	}
}

func TestFileOverrides(t *testing.T) {
	cfg := loadFrom(t, `
engine:
  suppression_window_ms: 2500
  frame_interval_ms: 33
assets:
  providers: [openai, placeholder]
  openai:
    api_key: from-file
persistence:
  enabled: false
`)

	if got := cfg.Engine.SuppressionWindow(); got != 2500*time.Millisecond {
		t.Errorf("suppression window = %v", got)
	}
	if got := cfg.Engine.FrameInterval(); got != 33*time.Millisecond {
		t.Errorf("frame interval = %v", got)
	}
	if len(cfg.Assets.Providers) != 2 || cfg.Assets.Providers[0] != "openai" {
		t.Errorf("providers = %v", cfg.Assets.Providers)
	}
	if cfg.Assets.OpenAI.APIKey != "from-file" {
		t.Errorf("api key = %q", cfg.Assets.OpenAI.APIKey)
	}
	if cfg.Persistence.Enabled {
		t.Error("persistence override ignored")
	}
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	cfg := loadFrom(t, "")
	if cfg.Assets.OpenAI.APIKey != "sk-env" {
		t.Errorf("api key = %q, want env fallback", cfg.Assets.OpenAI.APIKey)
	}
}
