// Package viewsync keeps a source view and its generated listing view
// synchronized: selecting a line in either view highlights the
// corresponding lines in the other, and source lines that produced no
// listing output are dimmed.
package viewsync

// View is the host's handle to one visible document view. Handles may
// be replaced over time as the document moves between view slots; the
// logical document is identified by ID.
type View interface {
	// ID is the canonical document identity: the file path for source
	// views, the asm:// identity for listing views.
	ID() string

	// LineCount is the view's current total line count.
	LineCount() int

	// ApplyHighlight replaces the view's "selected" decoration with the
	// given 0-based lines. An empty or nil slice clears it. The view
	// must tolerate out-of-range lines by ignoring them.
	ApplyHighlight(lines []int)

	// ApplyDim replaces the view's "dim-unused" decoration. Only source
	// views render it; listing views may ignore the call.
	ApplyDim(lines []int)

	// Reveal scrolls the view so the line is inside the viewport, only
	// if it is currently outside it.
	Reveal(line int)
}

// Host exposes the set of currently visible views. Queried at
// synchronizer construction and on every view-set change.
type Host interface {
	VisibleViews() []View
}
