package assets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Chain tries providers in a fixed fallback order and returns the first
// successful resolution.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) Name() string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ">")
}

func (c *Chain) Resolve(ctx context.Context, query string) (string, error) {
	var lastErr error
	for _, p := range c.providers {
		url, err := p.Resolve(ctx, query)
		if err == nil {
			return url, nil
		}
		lastErr = err
		slog.Debug("asset provider failed, trying next",
			"provider", p.Name(), "error", err)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("all asset providers failed: %w", lastErr)
}
