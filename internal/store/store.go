// Package store owns the authoritative slide document. Every mutation goes
// through Merge, which arbitrates between the streaming parser, user edits,
// proposal commits and undo. This single-entry-point discipline is the
// load-bearing invariant of the engine: no other component mutates the
// document directly.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/marqview/deckstream/internal/deck"
)

// Source identifies the origin of a candidate write.
type Source string

const (
	SourceStream   Source = "stream"
	SourceUser     Source = "user"
	SourceProposal Source = "proposal-commit"
	SourceUndo     Source = "undo"
)

// DefaultSuppressionWindow is the default length of the interval after a
// proposal commit or undo during which stream merges are discarded. Tunable
// via Options; the right value is empirical.
const DefaultSuppressionWindow = 5 * time.Second

// Options configures a Store.
type Options struct {
	// SuppressionWindow overrides DefaultSuppressionWindow when positive.
	SuppressionWindow time.Duration

	// Clock overrides the system clock, for tests.
	Clock Clock

	// OnChange is invoked with a snapshot after every applied merge. The
	// snapshot is identity-stable: the same slide keeps the same ID across
	// snapshots, so the rendering surface can key incremental re-renders.
	OnChange func(deck.Document)

	Logger *slog.Logger
}

// Store is the reconciler for the slide document.
type Store struct {
	mu sync.Mutex

	doc           deck.Document
	suppressUntil time.Time
	window        time.Duration
	pendingFinal  bool
	skipped       int

	clock    Clock
	onChange func(deck.Document)
	logger   *slog.Logger
}

// New creates an empty store.
func New(opts Options) *Store {
	if opts.SuppressionWindow <= 0 {
		opts.SuppressionWindow = DefaultSuppressionWindow
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{
		window:   opts.SuppressionWindow,
		clock:    opts.Clock,
		onChange: opts.OnChange,
		logger:   opts.Logger,
	}
}

// Document returns a snapshot of the authoritative document.
func (s *Store) Document() deck.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// SkippedMerges returns how many stream merges were discarded by the
// suppression window. Discards are expected, not errors.
func (s *Store) SkippedMerges() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// FinalizeStream marks the stream as complete: the next applied stream
// merge replaces the document verbatim, because the stream is the source of
// truth once the generation is declared done.
func (s *Store) FinalizeStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingFinal = true
}

// Reset clears the document and all arbitration state for a new session
// stream.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = deck.Document{}
	s.suppressUntil = time.Time{}
	s.pendingFinal = false
	s.skipped = 0
}

// Merge applies a candidate slide list from the given source and returns
// the resulting document. It never fails: malformed candidates are dropped
// with a warning and the operation always yields a valid document.
//
// Arbitration rules:
//  1. Proposal commits and undo replace their target wholesale and stamp
//     the suppression deadline. They always win.
//  2. Stream merges inside the suppression window are discarded entirely,
//     so a late parser re-render cannot clobber a just-committed edit.
//  3. Otherwise merge by ID: the candidate wins content, asset and layout
//     for shared IDs; candidate-only slides append in candidate order;
//     authoritative-only slides are preserved. After FinalizeStream the
//     next applied stream merge replaces the document verbatim.
func (s *Store) Merge(candidates []deck.Slide, source Source) deck.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates = s.dropMalformed(candidates, source)
	now := s.clock.Now()

	switch source {
	case SourceProposal, SourceUndo:
		// Replace the targeted slides wholesale; these sources always win.
		s.mergeByID(candidates)
		s.suppressUntil = now.Add(s.window)

	case SourceStream:
		if now.Before(s.suppressUntil) {
			s.skipped++
			s.logger.Debug("stream merge discarded, recent authoritative write",
				"candidates", len(candidates),
				"window_remaining", s.suppressUntil.Sub(now))
			return s.doc.Clone()
		}
		if s.pendingFinal {
			s.doc = deck.Document{Slides: candidates}
			s.pendingFinal = false
		} else {
			s.mergeByID(candidates)
		}

	case SourceUser:
		s.mergeByID(candidates)

	default:
		s.logger.Warn("merge from unknown source dropped", "source", source)
		return s.doc.Clone()
	}

	snap := s.doc.Clone()
	if s.onChange != nil {
		s.onChange(snap)
	}
	return snap
}

// mergeByID merges candidates into the authoritative order: shared IDs take
// the candidate's fields, new IDs append in candidate order, slides only
// present in the authoritative document stay where they are.
func (s *Store) mergeByID(candidates []deck.Slide) {
	for _, c := range candidates {
		if i := s.doc.IndexOf(c.ID); i >= 0 {
			s.doc.Slides[i] = c.Clone()
		} else {
			s.doc.Slides = append(s.doc.Slides, c.Clone())
		}
	}
}

// dropMalformed filters out candidates missing required fields.
func (s *Store) dropMalformed(candidates []deck.Slide, source Source) []deck.Slide {
	out := candidates[:0:0]
	for _, c := range candidates {
		if c.ID == "" {
			s.logger.Warn("dropping malformed candidate slide",
				"source", source)
			continue
		}
		out = append(out, c)
	}
	return out
}
