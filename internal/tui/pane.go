package tui

import (
	"fmt"
	"strings"

	"github.com/hartfelt/asmlens/internal/core/styles"
)

// Pane displays one document (source or listing) with a cursor, line
// numbers, and the two decoration sets driven by the synchronizer:
// "selected" line highlights and "dim-unused" lines.
//
// Decorations are replaced wholesale on every application; the pane
// never patches them incrementally.
type Pane struct {
	id    string
	title string

	plain  []string // raw text, used for dimmed/selected lines
	styled []string // syntax-highlighted text, used otherwise

	width  int
	height int

	cursor int
	offset int

	highlighted map[int]bool
	dimmed      map[int]bool
}

// NewPane creates a pane for the document identified by id.
// styled may be nil when no syntax highlighting applies.
func NewPane(id, title string, plain, styled []string) *Pane {
	return &Pane{
		id:          id,
		title:       title,
		plain:       plain,
		styled:      styled,
		highlighted: map[int]bool{},
		dimmed:      map[int]bool{},
	}
}

// ID returns the document identity shown by this pane.
func (p *Pane) ID() string { return p.id }

// LineCount returns the document's total line count.
func (p *Pane) LineCount() int { return len(p.plain) }

// Selection returns the 0-based line the cursor is on.
func (p *Pane) Selection() int { return p.cursor }

// ApplyHighlight replaces the selected-line decoration. Out-of-range
// lines are ignored.
func (p *Pane) ApplyHighlight(lines []int) {
	set := make(map[int]bool, len(lines))
	for _, l := range lines {
		if l >= 0 && l < len(p.plain) {
			set[l] = true
		}
	}
	p.highlighted = set
}

// ApplyDim replaces the dim-unused decoration. Out-of-range lines are
// ignored.
func (p *Pane) ApplyDim(lines []int) {
	set := make(map[int]bool, len(lines))
	for _, l := range lines {
		if l >= 0 && l < len(p.plain) {
			set[l] = true
		}
	}
	p.dimmed = set
}

// Reveal scrolls so line is visible, but only when it is currently
// outside the viewport; a visible line never causes a scroll.
func (p *Pane) Reveal(line int) {
	if line < 0 || line >= len(p.plain) {
		return
	}
	if line >= p.offset && line < p.offset+p.contentHeight() {
		return
	}
	// Center the revealed line.
	p.offset = clamp(line-p.contentHeight()/2, 0, p.maxOffset())
}

// SetLines replaces the pane's content, clamping cursor and scroll
// position to the new extent. Decorations are kept; entries past the
// new end simply stop rendering.
func (p *Pane) SetLines(plain, styled []string) {
	p.plain = plain
	p.styled = styled
	p.cursor = clamp(p.cursor, 0, max(0, len(plain)-1))
	p.offset = clamp(p.offset, 0, p.maxOffset())
}

// SetSize updates the pane dimensions.
func (p *Pane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.offset = clamp(p.offset, 0, p.maxOffset())
}

// MoveCursor moves the cursor by delta lines, scrolling as needed.
// Returns true when the cursor actually moved.
func (p *Pane) MoveCursor(delta int) bool {
	next := clamp(p.cursor+delta, 0, max(0, len(p.plain)-1))
	if next == p.cursor {
		return false
	}
	p.cursor = next
	p.scrollToCursor()
	return true
}

// CursorTo jumps the cursor to an absolute line.
func (p *Pane) CursorTo(line int) bool {
	return p.MoveCursor(clamp(line, 0, max(0, len(p.plain)-1)) - p.cursor)
}

// HalfPage returns the pane's half-page scroll distance.
func (p *Pane) HalfPage() int {
	return max(1, p.contentHeight()/2)
}

func (p *Pane) scrollToCursor() {
	if p.cursor < p.offset {
		p.offset = p.cursor
	} else if h := p.contentHeight(); p.cursor >= p.offset+h {
		p.offset = p.cursor - h + 1
	}
}

func (p *Pane) contentHeight() int {
	return max(1, p.height-1) // one line for the title
}

func (p *Pane) maxOffset() int {
	return max(0, len(p.plain)-p.contentHeight())
}

// View renders the visible window of the pane.
func (p *Pane) View(focused bool) string {
	title := styles.PaneTitleStyle.Render(p.title)
	if focused {
		title = styles.FocusedTitleStyle.Render(p.title)
	}

	numWidth := len(fmt.Sprintf("%d", max(1, len(p.plain))))
	end := min(p.offset+p.contentHeight(), len(p.plain))

	rows := make([]string, 0, p.contentHeight()+1)
	rows = append(rows, title)
	for i := p.offset; i < end; i++ {
		gutter := styles.GutterStyle.Render(fmt.Sprintf("%*d", numWidth, i+1))
		marker := "  "
		if i == p.cursor && focused {
			marker = styles.CursorGutterStyle.Render("▶ ")
		}

		text := p.renderLine(i)
		rows = append(rows, marker+gutter+" "+text)
	}

	return strings.Join(rows, "\n")
}

// renderLine picks the representation for one line. Selected lines win
// over dimmed ones; both render from plain text so the decoration style
// is not fighting syntax-highlight escape codes.
func (p *Pane) renderLine(i int) string {
	text := p.plain[i]
	if p.width > 0 {
		text = truncate(text, max(8, p.width-8))
	}

	switch {
	case p.highlighted[i]:
		return styles.SelectedLineStyle.Render(text)
	case p.dimmed[i]:
		return styles.DimLineStyle.Render(text)
	case p.styled != nil && i < len(p.styled):
		s := p.styled[i]
		if p.width > 0 {
			// Styled lines carry escape codes; fall back to plain when
			// truncation would cut through them.
			if len(s) != len(text) {
				return s
			}
			return truncate(s, max(8, p.width-8))
		}
		return s
	default:
		return text
	}
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	return string(r[:w-1]) + "…"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
