// Package styles provides the shared lipgloss styles and theme
// palettes for the TUI.
package styles

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Surface    lipgloss.Color
	Highlight  lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    lipgloss.Color("#7aa2f7"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Surface:    lipgloss.Color("#292e42"),
		Highlight:  lipgloss.Color("#3d59a1"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
	},
	"gruvbox": {
		Primary:    lipgloss.Color("#83a598"),
		Foreground: lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#665c54"),
		Surface:    lipgloss.Color("#3c3836"),
		Highlight:  lipgloss.Color("#504945"),
		Success:    lipgloss.Color("#b8bb26"),
		Warning:    lipgloss.Color("#fabd2f"),
		Error:      lipgloss.Color("#fb4934"),
	},
}

// ThemeNames returns the sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette looks up a theme by name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// Styles shared by the panes and chrome. SetTheme rebuilds them; the
// zero-value defaults use the default theme.
var (
	SelectedLineStyle lipgloss.Style
	DimLineStyle      lipgloss.Style
	GutterStyle       lipgloss.Style
	CursorGutterStyle lipgloss.Style
	PaneTitleStyle    lipgloss.Style
	FocusedTitleStyle lipgloss.Style
	TextMutedStyle    lipgloss.Style
	StatusErrorStyle  lipgloss.Style
	StatusOKStyle     lipgloss.Style
)

func init() {
	SetTheme(themes[DefaultTheme])
}

// SetTheme applies a palette to the shared styles.
func SetTheme(p Palette) {
	SelectedLineStyle = lipgloss.NewStyle().Background(p.Highlight)
	DimLineStyle = lipgloss.NewStyle().Foreground(p.Muted)
	GutterStyle = lipgloss.NewStyle().Foreground(p.Muted)
	CursorGutterStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	PaneTitleStyle = lipgloss.NewStyle().Foreground(p.Muted)
	FocusedTitleStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	TextMutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	StatusErrorStyle = lipgloss.NewStyle().Foreground(p.Error)
	StatusOKStyle = lipgloss.NewStyle().Foreground(p.Success)
}
