// Package proposal stages AI-computed slide replacements for review. A
// proposal holds the original and proposed slide side by side until the
// user accepts or rejects it; accepted proposals are committed through the
// document store and recorded as undo-capable history entries.
package proposal

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/marqview/deckstream/internal/deck"
	"github.com/marqview/deckstream/internal/store"
)

// Precondition failures. Always local: none of these corrupt engine or
// document state.
var (
	// ErrInvalidTarget reports a propose() against a slide that does not
	// exist in the current document.
	ErrInvalidTarget = errors.New("proposal target does not exist in document")

	// ErrProposalInProgress reports a second propose() while one is still
	// awaiting review. An unreviewed proposal is never silently overwritten.
	ErrProposalInProgress = errors.New("a proposal is already awaiting review")

	// ErrEmptyContent reports an accept() of a proposal with no content
	// nodes. An empty replacement is destructive and never committed.
	ErrEmptyContent = errors.New("refusing to commit empty slide content")

	// ErrNoProposal reports accept() or reject() without a live proposal.
	ErrNoProposal = errors.New("no proposal awaiting review")

	// ErrNotFound reports an undo() of an unknown or already-consumed
	// history entry.
	ErrNotFound = errors.New("history entry not found")
)

// Proposal is a staged full replacement for exactly one slide.
type Proposal struct {
	TargetID      string     `json:"target_id"`
	Original      deck.Slide `json:"original"`
	Proposed      deck.Slide `json:"proposed"`
	Rationale     string     `json:"rationale"`
	ChangeSummary []string   `json:"change_summary"`
}

// HistoryEntry records an accepted proposal. Entries are consumed by undo;
// there is no redo.
type HistoryEntry struct {
	ID          string      `json:"id"`
	TargetID    string      `json:"target_id"`
	TimestampMs int64       `json:"timestamp_ms"`
	Before      []deck.Node `json:"before"`
	After       []deck.Node `json:"after"`
}

// Engine is the proposal state machine: Idle -> Proposed -> {Idle, Committed}.
// Committed folds back to Idle immediately after writing history. The mutex
// is the implicit single-writer lock over propose/accept/reject/undo.
type Engine struct {
	mu sync.Mutex

	store   *store.Store
	clock   store.Clock
	current *Proposal
	history map[string]HistoryEntry
	order   []string // history entry IDs, oldest first
}

// NewEngine creates an idle engine writing through st. A nil clock falls
// back to the system clock.
func NewEngine(st *store.Store, clock store.Clock) *Engine {
	if clock == nil {
		clock = store.SystemClock{}
	}
	return &Engine{
		store:   st,
		clock:   clock,
		history: make(map[string]HistoryEntry),
	}
}

// Propose stages a full replacement for the target slide, capturing the
// original from the live document. The engine must be Idle.
func (e *Engine) Propose(targetID string, nodes []deck.Node, rationale string, changeSummary []string) (Proposal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != nil {
		return Proposal{}, ErrProposalInProgress
	}
	original, ok := e.store.Document().Get(targetID)
	if !ok {
		return Proposal{}, ErrInvalidTarget
	}

	proposed := original.Clone()
	proposed.Nodes = cloneNodes(nodes)

	e.current = &Proposal{
		TargetID:      targetID,
		Original:      original,
		Proposed:      proposed,
		Rationale:     rationale,
		ChangeSummary: append([]string(nil), changeSummary...),
	}
	return *e.current, nil
}

// Accept commits the live proposal through the store, records a history
// entry and returns to Idle.
func (e *Engine) Accept() (HistoryEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return HistoryEntry{}, ErrNoProposal
	}
	if len(e.current.Proposed.Nodes) == 0 {
		return HistoryEntry{}, ErrEmptyContent
	}

	p := e.current
	e.store.Merge([]deck.Slide{p.Proposed.Clone()}, store.SourceProposal)

	entry := HistoryEntry{
		ID:          uuid.NewString(),
		TargetID:    p.TargetID,
		TimestampMs: e.clock.Now().UnixMilli(),
		Before:      cloneNodes(p.Original.Nodes),
		After:       cloneNodes(p.Proposed.Nodes),
	}
	e.history[entry.ID] = entry
	e.order = append(e.order, entry.ID)
	e.current = nil
	return entry, nil
}

// Reject discards the live proposal with no document write.
func (e *Engine) Reject() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return ErrNoProposal
	}
	e.current = nil
	return nil
}

// Undo restores the entry's before-content into the live document and
// consumes the entry. Undo is a first-class authoritative write: it goes
// through the store with the undo source and stamps the suppression window
// like any other commit.
func (e *Engine) Undo(entryID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.history[entryID]
	if !ok {
		return ErrNotFound
	}

	restored, ok := e.store.Document().Get(entry.TargetID)
	if !ok {
		// The slide is gone from the document; restore it from scratch.
		restored = deck.Slide{ID: entry.TargetID}
	}
	restored.Nodes = cloneNodes(entry.Before)
	e.store.Merge([]deck.Slide{restored}, store.SourceUndo)

	delete(e.history, entryID)
	for i, id := range e.order {
		if id == entryID {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return nil
}

// Current returns the live proposal, if any.
func (e *Engine) Current() (Proposal, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return Proposal{}, false
	}
	return *e.current, true
}

// History returns the un-consumed history entries, oldest first.
func (e *Engine) History() []HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]HistoryEntry, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.history[id])
	}
	return out
}

func cloneNodes(nodes []deck.Node) []deck.Node {
	if nodes == nil {
		return nil
	}
	out := make([]deck.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
		if n.Items != nil {
			out[i].Items = append([]string(nil), n.Items...)
		}
	}
	return out
}
