package persist

import (
	"context"

	"github.com/marqview/deckstream/internal/deck"
)

// NoopStore is a no-op implementation of Store used when persistence is
// disabled. It silently discards all writes and returns empty results for
// reads.
type NoopStore struct{}

func (s *NoopStore) Save(ctx context.Context, name string, doc deck.Document) error {
	return nil
}

func (s *NoopStore) Load(ctx context.Context, name string) (deck.Document, error) {
	return deck.Document{}, nil
}

func (s *NoopStore) List(ctx context.Context) ([]Summary, error) {
	return nil, nil
}

func (s *NoopStore) Delete(ctx context.Context, name string) error {
	return nil
}

func (s *NoopStore) Close() error {
	return nil
}
