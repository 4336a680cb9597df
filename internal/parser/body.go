package parser

import (
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/marqview/deckstream/internal/deck"
)

// bodyMarkdown is a shared goldmark instance for parsing section bodies.
var bodyMarkdown = goldmark.New()

// parseBody converts a section body (markdown) into content nodes.
// Unsupported node kinds are skipped with a warning; the rest of the body is
// kept, so a single bad sub-node never drops the whole slide.
func parseBody(body string, logger *slog.Logger) []deck.Node {
	src := []byte(body)
	root := bodyMarkdown.Parser().Parse(text.NewReader(src))

	var nodes []deck.Node
	for c := root.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Heading:
			nodes = append(nodes, deck.Node{
				Kind:  deck.NodeHeading,
				Level: n.Level,
				Text:  nodeText(n, src),
			})
		case *ast.Paragraph:
			txt := nodeText(n, src)
			if txt == "" {
				continue
			}
			nodes = append(nodes, deck.Node{
				Kind: deck.NodeParagraph,
				Text: txt,
			})
		case *ast.List:
			items := listItems(n, src)
			if len(items) == 0 {
				continue
			}
			nodes = append(nodes, deck.Node{
				Kind:  deck.NodeList,
				Items: items,
			})
		default:
			logger.Warn("skipping unsupported content node",
				"kind", c.Kind().String())
		}
	}
	return nodes
}

func listItems(list *ast.List, src []byte) []string {
	var items []string
	for it := list.FirstChild(); it != nil; it = it.NextSibling() {
		txt := nodeText(it, src)
		if txt != "" {
			items = append(items, txt)
		}
	}
	return items
}

// nodeText extracts the plain text of a node, collapsing inner whitespace
// from soft line breaks.
func nodeText(n ast.Node, src []byte) string {
	txt := string(n.Text(src))
	return strings.Join(strings.Fields(txt), " ")
}
