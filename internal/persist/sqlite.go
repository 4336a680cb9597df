package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/marqview/deckstream/internal/deck"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// ErrDeckNotFound reports a Load or Delete of a deck that is not persisted.
var ErrDeckNotFound = errors.New("deck not found")

// Schema for the decks database. Slides are stored as a JSON document per
// deck: the engine replaces a deck wholesale on every save, so row-per-slide
// granularity buys nothing.
const schema = `
CREATE TABLE IF NOT EXISTS decks (
    name TEXT PRIMARY KEY,
    slides TEXT NOT NULL,
    slide_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_decks_updated_at ON decks(updated_at DESC);
`

// NewSQLiteStore creates a new SQLite-based deck store.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	dbPath := cfg.Path
	if dbPath == "" {
		var err error
		dbPath, err = GetDBPath()
		if err != nil {
			return nil, fmt.Errorf("get db path: %w", err)
		}
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, doc deck.Document) error {
	if name == "" {
		return fmt.Errorf("deck name is required")
	}
	blob, err := json.Marshal(doc.Slides)
	if err != nil {
		return fmt.Errorf("marshal slides: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decks (name, slides, slide_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			slides = excluded.slides,
			slide_count = excluded.slide_count,
			updated_at = excluded.updated_at`,
		name, string(blob), len(doc.Slides), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save deck %q: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (deck.Document, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT slides FROM decks WHERE name = ?`, name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return deck.Document{}, fmt.Errorf("%w: %s", ErrDeckNotFound, name)
	}
	if err != nil {
		return deck.Document{}, fmt.Errorf("load deck %q: %w", name, err)
	}

	var slides []deck.Slide
	if err := json.Unmarshal([]byte(blob), &slides); err != nil {
		return deck.Document{}, fmt.Errorf("unmarshal deck %q: %w", name, err)
	}
	return deck.Document{Slides: slides}, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, slide_count, updated_at FROM decks ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Name, &s.SlideCount, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan deck row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete deck %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrDeckNotFound, name)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
