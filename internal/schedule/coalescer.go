// Package schedule bounds document write frequency. Bursty stream chunks
// and asset-poll ticks are coalesced into at most one stream merge per
// rendering frame: new arrivals replace the pending payload in place, so
// the last writer within a frame wins without dropping progress. Proposal
// commits and undo never pass through here; they write to the store
// directly and immediately.
package schedule

import (
	"sync"
	"time"

	"github.com/marqview/deckstream/internal/deck"
)

// DefaultFrameInterval is one frame at 60fps.
const DefaultFrameInterval = 16 * time.Millisecond

// Coalescer drains at most one pending payload per frame tick into the
// merge function. The frame source is injected so tests can drive it
// without a real clock.
type Coalescer struct {
	mu         sync.Mutex
	pending    []deck.Slide
	hasPending bool

	// drainMu serializes swap-and-merge so a Flush racing a frame tick
	// cannot apply an older payload after a newer one.
	drainMu sync.Mutex

	frames <-chan time.Time
	merge  func([]deck.Slide)

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	done      chan struct{}
	stopped   chan struct{}
}

// New creates a coalescer that calls merge with the latest pending payload
// on each frame tick.
func New(frames <-chan time.Time, merge func([]deck.Slide)) *Coalescer {
	return &Coalescer{
		frames:  frames,
		merge:   merge,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start launches the single consumer goroutine.
func (c *Coalescer) Start() {
	c.startOnce.Do(func() {
		c.started = true
		go func() {
			defer close(c.stopped)
			for {
				select {
				case <-c.done:
					return
				case <-c.frames:
					c.drain()
				}
			}
		}()
	})
}

// Submit stages a candidate payload for the next frame. If a payload is
// already pending it is replaced in place rather than queued.
func (c *Coalescer) Submit(candidates []deck.Slide) {
	c.mu.Lock()
	c.pending = candidates
	c.hasPending = true
	c.mu.Unlock()
}

// Flush drains the pending payload immediately, bypassing the frame
// cadence. Used at stream end so the final merge is not delayed a frame.
// If a frame drain is in flight, Flush waits for it to finish first.
func (c *Coalescer) Flush() {
	c.drain()
}

// Clear discards the staged payload without merging it. A submission made
// before Clear never reaches the merge function.
func (c *Coalescer) Clear() {
	c.mu.Lock()
	c.pending = nil
	c.hasPending = false
	c.mu.Unlock()
}

// Stop shuts down the consumer. Pending payloads are drained first so no
// data is lost.
func (c *Coalescer) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
	if c.started {
		<-c.stopped
	}
	c.drain()
}

func (c *Coalescer) drain() {
	c.drainMu.Lock()
	defer c.drainMu.Unlock()

	c.mu.Lock()
	if !c.hasPending {
		c.mu.Unlock()
		return
	}
	payload := c.pending
	c.pending = nil
	c.hasPending = false
	c.mu.Unlock()

	c.merge(payload)
}

// Ticker adapts a time.Ticker into a frame source for production use.
// Returns the frame channel and a stop function.
func Ticker(interval time.Duration) (<-chan time.Time, func()) {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	t := time.NewTicker(interval)
	return t.C, t.Stop
}
