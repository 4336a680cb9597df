// Package assets tracks asynchronous asset resolution per slide and defines
// the provider interface used to resolve image queries. Resolution results
// are merged into the document on the next store write cycle, never
// synchronously.
package assets

import (
	"log/slog"
	"sync"
)

// Status is the lifecycle state of an asset resolution entry.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Entry records the resolution state for one slide's asset. Terminal states
// never revert except by explicit re-creation for a new query.
type Entry struct {
	ItemID  string
	Query   string
	Status  Status
	URL     string
	Message string
}

// Tracker is a per-slide key/value store of asset resolution state. It is
// safe for concurrent use: provider callbacks report in from goroutines
// while the session reads entries on the write cycle.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]*Entry
	logger  *slog.Logger
}

// NewTracker creates an empty tracker. A nil logger falls back to
// slog.Default().
func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		entries: make(map[string]*Entry),
		logger:  logger,
	}
}

// Request registers a pending resolution for the slide. It is idempotent: a
// second request for an already-pending or resolved identical query is a
// no-op. A different query replaces the entry, which makes any in-flight
// resolution for the old query stale.
//
// Request reports true if a new resolution should be started.
func (t *Tracker) Request(itemID, query string) bool {
	if itemID == "" || query == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[itemID]; ok && e.Query == query {
		return false
	}
	t.entries[itemID] = &Entry{ItemID: itemID, Query: query, Status: StatusPending}
	return true
}

// Resolve records a successful resolution. The query is the one captured at
// request time; if the tracker's current query for the slide no longer
// matches, the result is stale and discarded.
func (t *Tracker) Resolve(itemID, query, url string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[itemID]
	if !ok || e.Query != query {
		t.logger.Debug("discarding stale asset resolution",
			"item_id", itemID, "query", query)
		return
	}
	if e.Status != StatusPending {
		return
	}
	e.Status = StatusSuccess
	e.URL = url
}

// Fail records a terminal failed resolution. Failed entries are never
// auto-retried; a new query re-creates the entry. Stale failures are
// discarded by the same query guard as Resolve.
func (t *Tracker) Fail(itemID, query, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[itemID]
	if !ok || e.Query != query {
		t.logger.Debug("discarding stale asset failure",
			"item_id", itemID, "query", query)
		return
	}
	if e.Status != StatusPending {
		return
	}
	e.Status = StatusError
	e.Message = message
	t.logger.Warn("asset resolution failed",
		"item_id", itemID, "query", query, "error", message)
}

// Get returns a copy of the entry for the slide, if one exists.
func (t *Tracker) Get(itemID string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[itemID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns a snapshot of all entries, keyed by slide ID.
func (t *Tracker) Entries() map[string]Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]Entry, len(t.entries))
	for id, e := range t.entries {
		out[id] = *e
	}
	return out
}

// Clear drops all entries. In-flight resolutions become stale and are
// ignored when they report back.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]*Entry)
}
