// Package session wires one editing session together: parser, asset
// tracker, document store, proposal engine, scheduler and persistence. The
// session is an explicit context object constructed per editing session and
// torn down when it ends; there are no ambient singletons.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/marqview/deckstream/internal/assets"
	"github.com/marqview/deckstream/internal/deck"
	"github.com/marqview/deckstream/internal/parser"
	"github.com/marqview/deckstream/internal/persist"
	"github.com/marqview/deckstream/internal/proposal"
	"github.com/marqview/deckstream/internal/schedule"
	"github.com/marqview/deckstream/internal/store"
)

// Options configures a session. Zero values get sensible defaults.
type Options struct {
	// DeckName is the persistence key for this session's document.
	DeckName string

	// SuppressionWindow overrides the store default when positive.
	SuppressionWindow time.Duration

	// FrameInterval sets the scheduler cadence when Frames is nil.
	FrameInterval time.Duration

	// Frames injects a frame source, for tests. When nil a real ticker at
	// FrameInterval drives the scheduler.
	Frames <-chan time.Time

	// Clock overrides the store clock, for tests.
	Clock store.Clock

	// AssetProvider resolves image queries. Nil disables asset resolution.
	AssetProvider assets.Provider

	// Persist receives saves after finalize and after accepted proposals.
	// Nil disables persistence. The session takes ownership and closes it.
	Persist persist.Store

	// OnChange receives a document snapshot after every applied merge.
	OnChange func(deck.Document)

	Logger *slog.Logger
}

// Session owns the lifecycle of one streamed document.
type Session struct {
	mu sync.Mutex // guards parser access and candidate assembly

	name      string
	parser    *parser.Parser
	tracker   *assets.Tracker
	resolver  *assets.Resolver
	store     *store.Store
	proposals *proposal.Engine
	coalescer *schedule.Coalescer
	persist   persist.Store
	logger    *slog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	stopFrames func()
}

// New constructs a session and starts its scheduler.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Persist == nil {
		opts.Persist = &persist.NoopStore{}
	}

	st := store.New(store.Options{
		SuppressionWindow: opts.SuppressionWindow,
		Clock:             opts.Clock,
		OnChange:          opts.OnChange,
		Logger:            logger,
	})

	frames := opts.Frames
	stopFrames := func() {}
	if frames == nil {
		frames, stopFrames = schedule.Ticker(opts.FrameInterval)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		name:       opts.DeckName,
		parser:     parser.New(logger),
		tracker:    assets.NewTracker(logger),
		store:      st,
		proposals:  proposal.NewEngine(st, opts.Clock),
		persist:    opts.Persist,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		stopFrames: stopFrames,
	}
	s.coalescer = schedule.New(frames, func(candidates []deck.Slide) {
		st.Merge(candidates, store.SourceStream)
	})
	if opts.AssetProvider != nil {
		s.resolver = assets.NewResolver(s.tracker, opts.AssetProvider, s.refresh, logger)
	}
	s.coalescer.Start()
	return s
}

// HandleStream consumes a transport event: the full accumulated buffer and
// whether the stream has ended. On the final event the parser is finalized,
// the merge replaces the document verbatim and the deck is saved. A save
// failure is returned to the caller but never rolls back the in-memory
// document.
func (s *Session) HandleStream(fullBuffer string, isFinal bool) error {
	s.mu.Lock()
	s.parser.ParseChunk(fullBuffer)
	if isFinal {
		s.parser.Finalize()
	}
	candidates := s.candidatesLocked()
	s.mu.Unlock()

	if !isFinal {
		s.coalescer.Submit(candidates)
		return nil
	}

	s.store.FinalizeStream()
	s.coalescer.Submit(candidates)
	s.coalescer.Flush()

	if err := s.persist.Save(s.ctx, s.name, s.store.Document()); err != nil {
		return fmt.Errorf("save deck after finalize: %w", err)
	}
	return nil
}

// PartialSlides returns closed slides plus the speculative trailing block,
// for live progress display. It does not touch the authoritative document.
func (s *Session) PartialSlides() []deck.Slide {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser.PartialItems()
}

// ApplyUserEdit submits a direct user edit to the store.
func (s *Session) ApplyUserEdit(slides []deck.Slide) deck.Document {
	return s.store.Merge(slides, store.SourceUser)
}

// Propose stages an AI-computed replacement for one slide.
func (s *Session) Propose(targetID string, nodes []deck.Node, rationale string, summary []string) (proposal.Proposal, error) {
	return s.proposals.Propose(targetID, nodes, rationale, summary)
}

// Accept commits the live proposal and saves the deck. The save failure, if
// any, is surfaced without reverting the commit.
func (s *Session) Accept() (proposal.HistoryEntry, error) {
	entry, err := s.proposals.Accept()
	if err != nil {
		return proposal.HistoryEntry{}, err
	}
	if err := s.persist.Save(s.ctx, s.name, s.store.Document()); err != nil {
		return entry, fmt.Errorf("save deck after accept: %w", err)
	}
	return entry, nil
}

// Reject discards the live proposal.
func (s *Session) Reject() error {
	return s.proposals.Reject()
}

// Undo restores an accepted proposal's before-content and consumes the
// history entry.
func (s *Session) Undo(entryID string) error {
	return s.proposals.Undo(entryID)
}

// Proposals exposes the proposal engine for history listing.
func (s *Session) Proposals() *proposal.Engine {
	return s.proposals
}

// Document returns the authoritative document snapshot.
func (s *Session) Document() deck.Document {
	return s.store.Document()
}

// SkippedMerges reports how many stream merges the suppression window
// discarded.
func (s *Session) SkippedMerges() int {
	return s.store.SkippedMerges()
}

// WaitAssets blocks until in-flight asset resolutions report back. Used by
// the CLI before the final save.
func (s *Session) WaitAssets() {
	if s.resolver != nil {
		s.resolver.Wait()
	}
}

// Reset re-initializes the session for a new stream: parser state, asset
// entries, the staged stream payload and the document are cleared.
// In-flight resolutions become stale.
func (s *Session) Reset() {
	s.mu.Lock()
	s.parser.Reset()
	s.mu.Unlock()
	s.tracker.Clear()
	s.coalescer.Clear()
	s.store.Reset()
}

// Close tears the session down. The pending stream payload, if any, is
// drained before shutdown so no data is lost.
func (s *Session) Close() error {
	s.cancel()
	s.coalescer.Stop()
	s.stopFrames()
	return s.persist.Close()
}

// candidatesLocked assembles the stream candidate list: closed slides with
// resolved asset URLs overlaid from the tracker. New asset queries kick off
// background resolutions; their results land on a later write cycle.
func (s *Session) candidatesLocked() []deck.Slide {
	candidates := s.parser.Items()
	for i := range candidates {
		a := candidates[i].Asset
		if a == nil || a.Query == "" {
			continue
		}
		if s.resolver != nil {
			s.resolver.Kick(s.ctx, candidates[i].ID, a.Query)
		}
		if e, ok := s.tracker.Get(candidates[i].ID); ok &&
			e.Status == assets.StatusSuccess && e.Query == a.Query {
			a.URL = e.URL
		}
	}
	return candidates
}

// refresh re-submits the current candidates after an asset resolution so
// the URL is merged on the next frame rather than synchronously.
func (s *Session) refresh() {
	s.mu.Lock()
	candidates := s.candidatesLocked()
	s.mu.Unlock()
	s.coalescer.Submit(candidates)
}
