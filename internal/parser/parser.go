// Package parser turns an incrementally-growing markup buffer into an
// ordered list of slides. Slides are delimited by paired <section> tags with
// optional attributes; the section body is markdown. The parser is stateful
// only for identity assignment: every call re-derives the slide list from
// the full buffer, so it is always safe to re-invoke with a longer buffer.
package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/marqview/deckstream/internal/deck"
)

var (
	// Match <section> or <section layout="..." ...>
	sectionOpenRe = regexp.MustCompile(`(?i)<section([^>]*)>`)
	// Match </section>
	sectionCloseRe = regexp.MustCompile(`(?i)</section>`)
	// Match key="value" attribute pairs inside an opening tag
	attrRe = regexp.MustCompile(`([a-zA-Z][\w-]*)\s*=\s*"([^"]*)"`)
)

// Parser parses the accumulated stream buffer into slides.
type Parser struct {
	buf       string
	ids       []string // stable slide IDs, one per section ordinal
	closed    []deck.Slide
	open      *deck.Slide // speculative trailing section, nil if none
	finalized bool
	logger    *slog.Logger
}

// New creates a parser. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseChunk re-parses the entire accumulated buffer. The argument is the
// full buffer so far, not a delta; calling again with a longer buffer
// re-derives any section that grew since the last call.
func (p *Parser) ParseChunk(fullBuffer string) {
	if len(fullBuffer) < len(p.buf) {
		p.logger.Warn("stream buffer shrank, reparsing anyway",
			"old_len", len(p.buf), "new_len", len(fullBuffer))
	}
	p.buf = fullBuffer
	p.rescan()
}

// Items returns the slides whose sections have closed. The trailing open
// section is excluded until either its closing tag arrives or Finalize is
// called. The returned slides are deep copies.
func (p *Parser) Items() []deck.Slide {
	out := make([]deck.Slide, len(p.closed))
	for i, s := range p.closed {
		out[i] = s.Clone()
	}
	return out
}

// PartialItems returns the closed slides plus the speculative trailing open
// section, for live progress display.
func (p *Parser) PartialItems() []deck.Slide {
	out := p.Items()
	if p.open != nil {
		out = append(out, p.open.Clone())
	}
	return out
}

// Finalize force-closes any still-open trailing section with whatever
// content it has. Called once at stream end.
func (p *Parser) Finalize() {
	if p.finalized {
		return
	}
	p.finalized = true
	if p.open != nil {
		p.closed = append(p.closed, *p.open)
		p.open = nil
	}
}

// Finalized reports whether Finalize has been called since the last Reset.
func (p *Parser) Finalized() bool {
	return p.finalized
}

// Reset clears all internal state. It must be called before starting a new
// stream on the same parser instance; stale sections otherwise bleed into
// the new document.
func (p *Parser) Reset() {
	p.buf = ""
	p.ids = nil
	p.closed = nil
	p.open = nil
	p.finalized = false
}

// rescan re-derives the slide list from the full buffer.
func (p *Parser) rescan() {
	p.closed = p.closed[:0]
	p.open = nil

	rest := p.buf
	ordinal := 0
	for {
		loc := sectionOpenRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			return
		}
		attrs := rest[loc[2]:loc[3]]
		rest = rest[loc[1]:]

		slide := deck.Slide{ID: p.idFor(ordinal)}
		applyAttrs(&slide, attrs, p.logger)
		ordinal++

		closeLoc := sectionCloseRe.FindStringIndex(rest)
		if closeLoc == nil {
			// Open trailing section: parse speculatively, but keep a
			// partially-streamed tag out of the body.
			body := trimPartialTag(rest)
			slide.Nodes = parseBody(body, p.logger)
			p.open = &slide
			return
		}

		slide.Nodes = parseBody(rest[:closeLoc[0]], p.logger)
		p.closed = append(p.closed, slide)
		rest = rest[closeLoc[1]:]
	}
}

// idFor returns the stable ID for the given section ordinal, assigning a
// new one at first sight. IDs are never reassigned while the parser lives.
func (p *Parser) idFor(ordinal int) string {
	for len(p.ids) <= ordinal {
		p.ids = append(p.ids, uuid.NewString())
	}
	return p.ids[ordinal]
}

// applyAttrs copies recognized opening-tag attributes onto the slide.
// Unknown attributes are skipped, never fatal.
func applyAttrs(s *deck.Slide, raw string, logger *slog.Logger) {
	for _, m := range attrRe.FindAllStringSubmatch(raw, -1) {
		key, val := strings.ToLower(m[1]), m[2]
		switch key {
		case "layout":
			s.Layout = val
		case "align":
			s.Align = val
		case "background":
			s.Background = val
		case "image":
			if val != "" {
				s.Asset = &deck.Asset{Query: val}
			}
		default:
			logger.Debug("skipping unknown section attribute", "attr", key)
		}
	}
}

// trimPartialTag drops a trailing incomplete tag (e.g. "</sec") from a
// speculative body so it is not rendered as text.
func trimPartialTag(body string) string {
	idx := strings.LastIndex(body, "<")
	if idx < 0 {
		return body
	}
	tail := body[idx:]
	if strings.ContainsRune(tail, '>') {
		return body
	}
	// Only treat short tails as partial tags; a lone "<" deep in prose
	// followed by lots of text is content, not markup.
	if len(tail) <= len("</section") {
		return body[:idx]
	}
	return body
}
