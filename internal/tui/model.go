// Package tui implements the terminal front end: two panes showing a
// source document and its generated listing, kept in sync by
// viewsync.Synchronizer. The model is the synchronizer's Host; the
// panes are its Views.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/hartfelt/asmlens/internal/core/config"
	"github.com/hartfelt/asmlens/internal/core/event"
	"github.com/hartfelt/asmlens/internal/core/listing"
	"github.com/hartfelt/asmlens/internal/core/styles"
	"github.com/hartfelt/asmlens/internal/core/viewsync"
)

// Model is the Bubble Tea model for the split view.
type Model struct {
	cfg      *config.Config
	bus      *event.Bus
	provider listing.Provider
	sync     *viewsync.Synchronizer
	watcher  *SourceWatcher
	keys     keyMap
	log      zerolog.Logger

	sourcePath string
	listingID  string

	sourcePane *Pane
	asmPane    *Pane
	// slots is the left-to-right layout order; swapping slots moves the
	// documents between them without closing either.
	slots       [2]*Pane
	focus       int
	showListing bool

	showHelp  bool
	status    string
	statusErr bool

	width  int
	height int
}

// New builds the model for sourcePath, loads both documents, and wires
// the synchronizer.
func New(cfg *config.Config, sourcePath string, provider listing.Provider, bus *event.Bus, log zerolog.Logger) (*Model, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}

	plain := splitLines(string(data))
	styled := HighlightLines(sourcePath, plain)

	m := &Model{
		cfg:         cfg,
		bus:         bus,
		provider:    provider,
		keys:        defaultKeyMap(),
		log:         log.With().Str("component", "tui").Logger(),
		sourcePath:  sourcePath,
		listingID:   listing.ID(sourcePath),
		showListing: true,
	}

	m.sourcePane = NewPane(sourcePath, filepath.Base(sourcePath), plain, styled)
	m.asmPane = NewPane(m.listingID, "listing", nil, nil)
	m.slots = [2]*Pane{m.sourcePane, m.asmPane}

	if err := m.loadListingPane(); err != nil {
		return nil, err
	}

	m.watcher = NewSourceWatcher(sourcePath, log)

	// The synchronizer queries VisibleViews at construction, performs
	// the initial reload, and applies the dim decoration.
	m.sync = viewsync.New(m, provider, bus, m.sourcePane, m.asmPane, viewsync.Options{
		DimUnused: cfg.DimUnusedFor,
	}, log)

	// Seed the cross-view highlight from the initial cursor position.
	m.publishSelection(m.sourcePane)

	return m, nil
}

// VisibleViews implements viewsync.Host: the panes currently laid out.
func (m *Model) VisibleViews() []viewsync.View {
	views := []viewsync.View{m.sourcePane}
	if m.showListing {
		views = append(views, m.asmPane)
	}
	return views
}

// Init starts the source watcher.
func (m *Model) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Start()
}

// Update handles all events. Everything runs synchronously inside the
// update loop; the synchronizer's handlers complete before the next
// message is processed.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case sourceChangedMsg:
		m.reloadSource()
		if m.watcher != nil {
			return m, m.watcher.Start()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	pane := m.focusedPane()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.teardown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Down):
		if pane.MoveCursor(1) {
			m.publishSelection(pane)
		}

	case key.Matches(msg, m.keys.Up):
		if pane.MoveCursor(-1) {
			m.publishSelection(pane)
		}

	case key.Matches(msg, m.keys.HalfDown):
		if pane.MoveCursor(pane.HalfPage()) {
			m.publishSelection(pane)
		}

	case key.Matches(msg, m.keys.HalfUp):
		if pane.MoveCursor(-pane.HalfPage()) {
			m.publishSelection(pane)
		}

	case key.Matches(msg, m.keys.Top):
		if pane.CursorTo(0) {
			m.publishSelection(pane)
		}

	case key.Matches(msg, m.keys.Bottom):
		if pane.CursorTo(pane.LineCount() - 1) {
			m.publishSelection(pane)
		}

	case key.Matches(msg, m.keys.FocusNext):
		if m.showListing {
			m.focus = (m.focus + 1) % 2
		}

	case key.Matches(msg, m.keys.ToggleListing):
		m.showListing = !m.showListing
		if !m.showListing && m.focusedPane() == m.asmPane {
			m.focusSource()
		}
		m.layout()
		m.bus.PublishViewSet(event.ViewSetChanged{})
		if m.showListing {
			m.publishSelection(m.focusedPane())
		}

	case key.Matches(msg, m.keys.Swap):
		m.slots[0], m.slots[1] = m.slots[1], m.slots[0]
		m.layout()
		m.bus.PublishViewSet(event.ViewSetChanged{})

	case key.Matches(msg, m.keys.Refresh):
		m.refreshListing()
	}

	return m, nil
}

// reloadSource re-reads the source document after an on-disk change
// and regenerates the listing.
func (m *Model) reloadSource() {
	data, err := os.ReadFile(m.sourcePath)
	if err != nil {
		m.setStatus(fmt.Sprintf("read source: %v", err), true)
		return
	}
	plain := splitLines(string(data))
	m.sourcePane.SetLines(plain, HighlightLines(m.sourcePath, plain))

	m.refreshListing()
}

// refreshListing regenerates the listing. A content change is
// published on the bus, which makes the synchronizer rebuild the index
// and reapply dimming; an unchanged listing still gets a reload so the
// dim set tracks source edits.
func (m *Model) refreshListing() {
	changed, err := m.provider.Refresh(m.listingID)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}

	if changed {
		if err := m.loadListingPane(); err != nil {
			m.setStatus(err.Error(), true)
			return
		}
	} else if err := m.sync.Reload(); err != nil {
		m.setStatus(err.Error(), true)
		return
	}

	m.setStatus("listing regenerated", false)
	m.publishSelection(m.focusedPane())
}

// loadListingPane fills the listing pane from the provider's current
// snapshot.
func (m *Model) loadListingPane() error {
	l, err := m.provider.Listing(m.listingID)
	if err != nil {
		return err
	}

	lines := make([]string, len(l.Lines))
	for i, line := range l.Lines {
		lines[i] = strings.ReplaceAll(line.Text, "\t", "    ")
	}
	m.asmPane.SetLines(lines, HighlightLines("listing.s", lines))
	return nil
}

func (m *Model) focusedPane() *Pane {
	return m.slots[m.focus]
}

func (m *Model) focusSource() {
	for i, p := range m.slots {
		if p == m.sourcePane {
			m.focus = i
			return
		}
	}
}

// publishSelection emits a tagged selection event for the pane's
// cursor line. The role travels with the event; the synchronizer never
// compares view handles.
func (m *Model) publishSelection(p *Pane) {
	role := event.RoleSource
	if p == m.asmPane {
		role = event.RoleListing
	}
	m.bus.PublishSelection(event.Selection{Role: role, Line: p.Selection()})
}

func (m *Model) layout() {
	h := max(1, m.height-1) // status bar
	if !m.showListing {
		m.sourcePane.SetSize(m.width, h)
		return
	}
	half := m.width / 2
	m.slots[0].SetSize(half, h)
	m.slots[1].SetSize(m.width-half, h)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
	if isErr {
		m.log.Error().Msg(s)
	}
}

func (m *Model) teardown() {
	m.sync.Close()
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
}

// View renders the split layout, or the help overlay when open.
func (m *Model) View() string {
	if m.showHelp {
		return renderHelp(m.width)
	}

	var panes string
	if m.showListing {
		left := m.slots[0].View(m.focusedPane() == m.slots[0])
		right := m.slots[1].View(m.focusedPane() == m.slots[1])
		panes = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	} else {
		panes = m.sourcePane.View(true)
	}

	return panes + "\n" + m.statusBar()
}

func (m *Model) statusBar() string {
	hint := styles.TextMutedStyle.Render("j/k move · tab switch · z listing · ? help · q quit")
	if m.status == "" {
		return hint
	}
	if m.statusErr {
		return styles.StatusErrorStyle.Render(m.status)
	}
	return hint + "  " + styles.StatusOKStyle.Render(m.status)
}

// Run starts the program in the alternate screen.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
