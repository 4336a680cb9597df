// Package deck defines the slide document model shared by the parser, the
// document store and the proposal engine. Content nodes are opaque to the
// rest of the engine: they are moved and replaced wholesale, never
// interpreted.
package deck

// NodeKind identifies the type of a content node.
type NodeKind string

const (
	NodeHeading   NodeKind = "heading"
	NodeParagraph NodeKind = "paragraph"
	NodeList      NodeKind = "list"
)

// Node is one content node inside a slide body.
type Node struct {
	Kind  NodeKind `json:"kind"`
	Level int      `json:"level,omitempty"` // heading level, 1-6
	Text  string   `json:"text,omitempty"`
	Items []string `json:"items,omitempty"` // list items
}

// Asset is an out-of-band resource associated with a slide, resolved
// asynchronously and independently of parsing. URL is empty until resolved.
type Asset struct {
	Query string `json:"query"`
	URL   string `json:"url,omitempty"`
}

// Slide is one structured unit in the ordered document. Two slides are the
// same slide iff their IDs are equal; content equality is irrelevant to
// identity.
type Slide struct {
	ID    string `json:"id"`
	Nodes []Node `json:"nodes"`
	Asset *Asset `json:"asset,omitempty"`

	// Layout metadata, copied verbatim between parses.
	Layout     string `json:"layout,omitempty"`
	Align      string `json:"align,omitempty"`
	Background string `json:"background,omitempty"`
}

// Clone returns a deep copy of the slide.
func (s Slide) Clone() Slide {
	out := s
	if s.Nodes != nil {
		out.Nodes = make([]Node, len(s.Nodes))
		for i, n := range s.Nodes {
			out.Nodes[i] = n.clone()
		}
	}
	if s.Asset != nil {
		a := *s.Asset
		out.Asset = &a
	}
	return out
}

func (n Node) clone() Node {
	out := n
	if n.Items != nil {
		out.Items = append([]string(nil), n.Items...)
	}
	return out
}

// Document is the ordered slide collection. Order is presentation order and
// IDs are unique within a document.
type Document struct {
	Slides []Slide `json:"slides"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{}
	if d.Slides != nil {
		out.Slides = make([]Slide, len(d.Slides))
		for i, s := range d.Slides {
			out.Slides[i] = s.Clone()
		}
	}
	return out
}

// IndexOf returns the position of the slide with the given ID, or -1.
func (d Document) IndexOf(id string) int {
	for i, s := range d.Slides {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the slide with the given ID, if present.
func (d Document) Get(id string) (Slide, bool) {
	if i := d.IndexOf(id); i >= 0 {
		return d.Slides[i], true
	}
	return Slide{}, false
}

// Text flattens a slide's content nodes into plain text, one node per line
// and one list item per line. Used for diff rendering and persistence
// search, not for round-tripping.
func (s Slide) Text() string {
	var b []byte
	for _, n := range s.Nodes {
		switch n.Kind {
		case NodeList:
			for _, it := range n.Items {
				b = append(b, "- "...)
				b = append(b, it...)
				b = append(b, '\n')
			}
		default:
			b = append(b, n.Text...)
			b = append(b, '\n')
		}
	}
	return string(b)
}
