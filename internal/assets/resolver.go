package assets

import (
	"context"
	"log/slog"
	"sync"
)

// Resolver runs provider calls in the background and reports results into
// the tracker. Results surface in the document on the next write cycle via
// the notify callback; they are never applied synchronously.
type Resolver struct {
	tracker  *Tracker
	provider Provider
	notify   func() // nudges the write cycle after a terminal transition
	logger   *slog.Logger

	wg sync.WaitGroup
}

// NewResolver creates a resolver. notify may be nil.
func NewResolver(tracker *Tracker, provider Provider, notify func(), logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		tracker:  tracker,
		provider: provider,
		notify:   notify,
		logger:   logger,
	}
}

// Kick starts a resolution for the slide unless an identical one is already
// pending or resolved. There is no mid-flight cancellation: if the query
// changes before the provider returns, the stale result is discarded by the
// tracker's query guard.
func (r *Resolver) Kick(ctx context.Context, itemID, query string) {
	if !r.tracker.Request(itemID, query) {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		url, err := r.provider.Resolve(ctx, query)
		if err != nil {
			r.tracker.Fail(itemID, query, err.Error())
		} else {
			r.tracker.Resolve(itemID, query, url)
			r.logger.Debug("asset resolved",
				"item_id", itemID, "provider", r.provider.Name())
		}
		if r.notify != nil {
			r.notify()
		}
	}()
}

// Wait blocks until all in-flight resolutions have reported back. Used at
// stream end and in tests.
func (r *Resolver) Wait() {
	r.wg.Wait()
}
