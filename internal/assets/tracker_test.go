package assets

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestRequestIdempotent(t *testing.T) {
	tr := NewTracker(nil)

	if !tr.Request("s1", "q1") {
		t.Fatal("first request should start a resolution")
	}
	if tr.Request("s1", "q1") {
		t.Error("identical request while pending must be a no-op")
	}

	tr.Resolve("s1", "q1", "https://example.com/a.png")
	if tr.Request("s1", "q1") {
		t.Error("identical request after success must be a no-op")
	}
}

func TestStaleResolutionDiscarded(t *testing.T) {
	tr := NewTracker(nil)

	tr.Request("s1", "q1")
	// Query changes before the first resolution returns.
	if !tr.Request("s1", "q2") {
		t.Fatal("changed query should start a new resolution")
	}

	// The q1 callback fires late.
	tr.Resolve("s1", "q1", "https://example.com/stale.png")

	e, ok := tr.Get("s1")
	if !ok {
		t.Fatal("entry missing")
	}
	if e.Status != StatusPending || e.Query != "q2" {
		t.Errorf("entry overwritten by stale result: %+v", e)
	}
	if e.URL != "" {
		t.Errorf("stale URL leaked: %q", e.URL)
	}

	// The q2 callback lands normally.
	tr.Resolve("s1", "q2", "https://example.com/fresh.png")
	e, _ = tr.Get("s1")
	if e.Status != StatusSuccess || e.URL != "https://example.com/fresh.png" {
		t.Errorf("fresh resolution not applied: %+v", e)
	}
}

func TestFailIsTerminal(t *testing.T) {
	tr := NewTracker(nil)

	tr.Request("s1", "q1")
	tr.Fail("s1", "q1", "provider down")

	e, _ := tr.Get("s1")
	if e.Status != StatusError || e.Message != "provider down" {
		t.Fatalf("unexpected entry: %+v", e)
	}

	// A late success for the same query must not revert the terminal state.
	tr.Resolve("s1", "q1", "https://example.com/late.png")
	e, _ = tr.Get("s1")
	if e.Status != StatusError || e.URL != "" {
		t.Errorf("terminal state reverted: %+v", e)
	}

	// A new query re-creates the entry.
	if !tr.Request("s1", "q2") {
		t.Error("new query after failure should start a resolution")
	}
	e, _ = tr.Get("s1")
	if e.Status != StatusPending {
		t.Errorf("entry not re-created: %+v", e)
	}
}

func TestClearMakesInFlightStale(t *testing.T) {
	tr := NewTracker(nil)
	tr.Request("s1", "q1")
	tr.Clear()

	tr.Resolve("s1", "q1", "https://example.com/a.png")
	if _, ok := tr.Get("s1"); ok {
		t.Error("resolution after Clear re-created an entry")
	}
}

type fakeProvider struct {
	mu      sync.Mutex
	calls   []string
	results map[string]string
	err     error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Resolve(_ context.Context, query string) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, query)
	p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	return p.results[query], nil
}

func TestResolverReportsIntoTracker(t *testing.T) {
	tr := NewTracker(nil)
	fp := &fakeProvider{results: map[string]string{"q1": "https://example.com/x.png"}}

	notified := make(chan struct{}, 4)
	r := NewResolver(tr, fp, func() { notified <- struct{}{} }, nil)

	r.Kick(context.Background(), "s1", "q1")
	r.Kick(context.Background(), "s1", "q1") // duplicate, must not double-resolve
	r.Wait()

	e, ok := tr.Get("s1")
	if !ok || e.Status != StatusSuccess || e.URL != "https://example.com/x.png" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if len(fp.calls) != 1 {
		t.Errorf("provider called %d times, want 1", len(fp.calls))
	}
	select {
	case <-notified:
	default:
		t.Error("notify was not called")
	}
}

func TestResolverFailure(t *testing.T) {
	tr := NewTracker(nil)
	fp := &fakeProvider{err: errors.New("boom")}
	r := NewResolver(tr, fp, nil, nil)

	r.Kick(context.Background(), "s1", "q1")
	r.Wait()

	e, _ := tr.Get("s1")
	if e.Status != StatusError {
		t.Fatalf("expected error status, got %+v", e)
	}
}

func TestChainFallbackOrder(t *testing.T) {
	failing := &fakeProvider{err: errors.New("quota")}
	working := &fakeProvider{results: map[string]string{"q": "https://example.com/ok.png"}}
	c := NewChain(failing, working)

	url, err := c.Resolve(context.Background(), "q")
	if err != nil {
		t.Fatalf("chain failed: %v", err)
	}
	if url != "https://example.com/ok.png" {
		t.Errorf("url = %q", url)
	}
	if len(failing.calls) != 1 || len(working.calls) != 1 {
		t.Errorf("fallback order not honored: %v %v", failing.calls, working.calls)
	}
}

func TestPlaceholderDeterministic(t *testing.T) {
	p := NewPlaceholderProvider("")
	a, _ := p.Resolve(context.Background(), "sunset over mountains")
	b, _ := p.Resolve(context.Background(), "sunset over mountains")
	if a != b {
		t.Errorf("placeholder URL not deterministic: %q vs %q", a, b)
	}
	other, _ := p.Resolve(context.Background(), "city at night")
	if a == other {
		t.Error("distinct queries produced identical URLs")
	}
}
