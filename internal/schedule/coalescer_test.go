package schedule

import (
	"testing"
	"time"

	"github.com/marqview/deckstream/internal/deck"
)

func slide(id, text string) deck.Slide {
	return deck.Slide{ID: id, Nodes: []deck.Node{{Kind: deck.NodeParagraph, Text: text}}}
}

func TestLastWriterWithinFrameWins(t *testing.T) {
	frames := make(chan time.Time)
	merged := make(chan []deck.Slide, 8)
	c := New(frames, func(s []deck.Slide) { merged <- s })
	c.Start()
	defer c.Stop()

	// Three bursty submissions before any frame.
	c.Submit([]deck.Slide{slide("a", "v1")})
	c.Submit([]deck.Slide{slide("a", "v2")})
	c.Submit([]deck.Slide{slide("a", "v3")})

	frames <- time.Now()

	select {
	case got := <-merged:
		if got[0].Nodes[0].Text != "v3" {
			t.Errorf("merged payload = %q, want last submission", got[0].Nodes[0].Text)
		}
	case <-time.After(time.Second):
		t.Fatal("no merge after frame tick")
	}

	select {
	case got := <-merged:
		t.Fatalf("extra merge for coalesced submissions: %+v", got)
	default:
	}
}

func TestEmptyFrameDoesNotMerge(t *testing.T) {
	frames := make(chan time.Time)
	merged := make(chan []deck.Slide, 8)
	c := New(frames, func(s []deck.Slide) { merged <- s })
	c.Start()
	defer c.Stop()

	frames <- time.Now()
	frames <- time.Now() // second send proves the first tick was consumed

	select {
	case <-merged:
		t.Fatal("merge ran with no pending payload")
	default:
	}
}

func TestOneMergePerFrame(t *testing.T) {
	frames := make(chan time.Time)
	merged := make(chan []deck.Slide, 8)
	c := New(frames, func(s []deck.Slide) { merged <- s })
	c.Start()
	defer c.Stop()

	for i := 0; i < 3; i++ {
		c.Submit([]deck.Slide{slide("a", "payload")})
		frames <- time.Now()
		select {
		case <-merged:
		case <-time.After(time.Second):
			t.Fatalf("frame %d: no merge", i)
		}
	}
}

func TestFlushBypassesFrameCadence(t *testing.T) {
	frames := make(chan time.Time)
	merged := make(chan []deck.Slide, 8)
	c := New(frames, func(s []deck.Slide) { merged <- s })
	c.Start()
	defer c.Stop()

	c.Submit([]deck.Slide{slide("a", "final")})
	c.Flush()

	select {
	case got := <-merged:
		if got[0].Nodes[0].Text != "final" {
			t.Errorf("flushed payload = %q", got[0].Nodes[0].Text)
		}
	default:
		t.Fatal("Flush did not drain synchronously")
	}
}

func TestClearDiscardsPending(t *testing.T) {
	frames := make(chan time.Time)
	merged := make(chan []deck.Slide, 8)
	c := New(frames, func(s []deck.Slide) { merged <- s })
	c.Start()
	defer c.Stop()

	c.Submit([]deck.Slide{slide("a", "discarded")})
	c.Clear()

	frames <- time.Now()
	frames <- time.Now() // second send proves the first tick was consumed

	select {
	case got := <-merged:
		t.Fatalf("cleared payload reached merge: %+v", got)
	default:
	}
}

func TestFlushWaitsForInFlightDrain(t *testing.T) {
	frames := make(chan time.Time)
	entered := make(chan struct{}, 2)
	merged := make(chan []deck.Slide) // unbuffered: merge blocks until observed
	c := New(frames, func(s []deck.Slide) {
		entered <- struct{}{}
		merged <- s
	})
	c.Start()
	defer c.Stop()

	c.Submit([]deck.Slide{slide("a", "v1")})
	frames <- time.Now()
	<-entered // consumer is now inside merge(v1), blocked on the send

	c.Submit([]deck.Slide{slide("a", "v2")})
	flushed := make(chan struct{})
	go func() {
		c.Flush()
		close(flushed)
	}()

	var order []string
	for i := 0; i < 2; i++ {
		select {
		case got := <-merged:
			order = append(order, got[0].Nodes[0].Text)
			if i == 0 {
				<-entered
			}
		case <-time.After(time.Second):
			t.Fatalf("merge %d never ran, applied so far: %v", i, order)
		}
	}
	<-flushed

	if order[0] != "v1" || order[1] != "v2" {
		t.Errorf("payloads applied out of submission order: %v", order)
	}
}

func TestStopDrainsPending(t *testing.T) {
	frames := make(chan time.Time)
	merged := make(chan []deck.Slide, 8)
	c := New(frames, func(s []deck.Slide) { merged <- s })
	c.Start()

	c.Submit([]deck.Slide{slide("a", "tail")})
	c.Stop()

	select {
	case got := <-merged:
		if got[0].Nodes[0].Text != "tail" {
			t.Errorf("drained payload = %q", got[0].Nodes[0].Text)
		}
	default:
		t.Fatal("Stop dropped the pending payload")
	}
}
