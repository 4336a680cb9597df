package persist

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/marqview/deckstream/internal/deck"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(Config{
		Enabled: true,
		Path:    filepath.Join(t.TempDir(), "decks.db"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDoc() deck.Document {
	return deck.Document{Slides: []deck.Slide{
		{
			ID:     "s1",
			Layout: "left",
			Nodes: []deck.Node{
				{Kind: deck.NodeHeading, Level: 1, Text: "Intro"},
				{Kind: deck.NodeParagraph, Text: "Welcome."},
			},
			Asset: &deck.Asset{Query: "sunrise", URL: "https://example.com/a.png"},
		},
		{
			ID:    "s2",
			Nodes: []deck.Node{{Kind: deck.NodeList, Items: []string{"one", "two"}}},
		},
	}}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "launch-deck", testDoc()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, "launch-deck")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Slides) != 2 {
		t.Fatalf("loaded %d slides, want 2", len(got.Slides))
	}
	if got.Slides[0].ID != "s1" || got.Slides[0].Nodes[0].Text != "Intro" {
		t.Errorf("slide content lost: %+v", got.Slides[0])
	}
	if got.Slides[0].Asset == nil || got.Slides[0].Asset.URL != "https://example.com/a.png" {
		t.Errorf("asset lost: %+v", got.Slides[0].Asset)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Save(ctx, "deck", testDoc())
	smaller := deck.Document{Slides: []deck.Slide{{ID: "only", Nodes: []deck.Node{{Kind: deck.NodeParagraph, Text: "x"}}}}}
	if err := s.Save(ctx, "deck", smaller); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx, "deck")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Slides) != 1 || got.Slides[0].ID != "only" {
		t.Errorf("save did not replace deck wholesale: %+v", got.Slides)
	}
}

func TestListAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Save(ctx, "one", testDoc())
	s.Save(ctx, "two", testDoc())

	decks, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(decks) != 2 {
		t.Fatalf("listed %d decks, want 2", len(decks))
	}
	if decks[0].SlideCount != 2 {
		t.Errorf("slide count = %d, want 2", decks[0].SlideCount)
	}

	if err := s.Delete(ctx, "one"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "one"); !errors.Is(err, ErrDeckNotFound) {
		t.Errorf("second delete err = %v, want ErrDeckNotFound", err)
	}
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Load(context.Background(), "ghost"); !errors.Is(err, ErrDeckNotFound) {
		t.Errorf("err = %v, want ErrDeckNotFound", err)
	}
}
