package tui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# asmlens

Source and generated listing, side by side. Moving the cursor in one
pane highlights the matching lines in the other; source lines that
produced no listing output are dimmed.

## Keys

| Key | Action |
|-----|--------|
| j / k | move cursor |
| d / u | half page down / up |
| g / G | jump to top / bottom |
| tab | switch pane |
| z | show / hide the listing pane |
| s | swap panes |
| r | regenerate the listing |
| ? | toggle this help |
| q | quit |
`

// renderHelp renders the help overlay as markdown. Falls back to the
// raw text when the renderer cannot be built.
func renderHelp(width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(max(20, width-4)),
	)
	if err != nil {
		return helpMarkdown
	}

	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
