package assets

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"
)

const defaultPlaceholderBase = "https://placehold.co"

// PlaceholderProvider resolves every query to a deterministic placeholder
// image URL. Useful for local development without API costs and as the last
// link in a fallback chain.
type PlaceholderProvider struct {
	baseURL string
}

func NewPlaceholderProvider(baseURL string) *PlaceholderProvider {
	if baseURL == "" {
		baseURL = defaultPlaceholderBase
	}
	return &PlaceholderProvider{baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *PlaceholderProvider) Name() string {
	return "Placeholder"
}

func (p *PlaceholderProvider) Resolve(_ context.Context, query string) (string, error) {
	// Derive a stable background color from the query so repeated runs
	// produce the same URL for the same query.
	h := fnv.New32a()
	h.Write([]byte(query))
	color := h.Sum32() & 0xffffff
	return fmt.Sprintf("%s/1024x576/%06x/ffffff?text=%s",
		p.baseURL, color, url.QueryEscape(query)), nil
}
