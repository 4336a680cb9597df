// Package persist is the persistence boundary for finished and in-progress
// decks. Saves happen after stream finalize and after every accepted
// proposal; a failed save is surfaced to the caller but never rolls back
// the in-memory document.
package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marqview/deckstream/internal/deck"
)

// Store is the interface for deck persistence.
type Store interface {
	Save(ctx context.Context, name string, doc deck.Document) error
	Load(ctx context.Context, name string) (deck.Document, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// Summary describes a persisted deck without its content.
type Summary struct {
	Name       string    `json:"name"`
	SlideCount int       `json:"slide_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Config holds persistence configuration.
type Config struct {
	Enabled bool   `mapstructure:"enabled"` // Master switch
	Path    string `mapstructure:"path"`    // Override default database path
}

// DefaultConfig returns the default persistence configuration.
func DefaultConfig() Config {
	return Config{Enabled: true}
}

// GetDataDir returns the XDG data directory for deckstream.
// Uses $XDG_DATA_HOME if set, otherwise ~/.local/share
func GetDataDir() (string, error) {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "deckstream"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "deckstream"), nil
}

// GetDBPath returns the path to the decks database.
func GetDBPath() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "decks.db"), nil
}

// NewStore creates a Store based on the configuration. If persistence is
// disabled, returns a no-op store.
func NewStore(cfg Config) (Store, error) {
	if !cfg.Enabled {
		return &NoopStore{}, nil
	}
	return NewSQLiteStore(cfg)
}
