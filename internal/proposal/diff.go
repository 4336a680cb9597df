package proposal

import (
	diff "github.com/shogoki/gotextdiff"
)

// Diff renders a unified diff of the proposal's original versus proposed
// content, for review display. Returns "" when nothing changed.
func (p Proposal) Diff() string {
	oldText := p.Original.Text()
	newText := p.Proposed.Text()
	if oldText == newText {
		return ""
	}
	name := "slide-" + p.TargetID
	return string(diff.Diff(name, []byte(oldText), name, []byte(newText)))
}
