package viewsync

import (
	"github.com/rs/zerolog"

	"github.com/hartfelt/asmlens/internal/core/event"
	"github.com/hartfelt/asmlens/internal/core/linemap"
	"github.com/hartfelt/asmlens/internal/core/listing"
)

// Options configures a Synchronizer.
type Options struct {
	// DimUnused resolves, per source document identity, whether unused
	// source lines are dimmed. Nil means always on.
	DimUnused func(id string) bool
}

// Synchronizer owns the correspondence index and visibility state for
// one source/listing view pair and reacts to the three event classes:
// selection changes, visible-view-set changes, and listing changes.
//
// All handling is synchronous; every decoration application replaces
// the previous one wholesale, so a newer event fully supersedes an
// older one and no partial update is ever observable.
type Synchronizer struct {
	host     Host
	provider listing.Provider
	opts     Options
	log      zerolog.Logger

	sourceID  string
	listingID string

	source  View
	listing View
	visible bool

	lines []listing.Line
	index *linemap.Index

	subs []event.Subscription
}

// New wires a synchronizer for the pair of logical documents shown by
// source and listingView, subscribes it to bus, and, when both views
// are currently visible, performs the initial reload.
func New(h Host, provider listing.Provider, bus *event.Bus, source, listingView View, opts Options, log zerolog.Logger) *Synchronizer {
	s := &Synchronizer{
		host:      h,
		provider:  provider,
		opts:      opts,
		log:       log.With().Str("component", "viewsync").Logger(),
		sourceID:  source.ID(),
		listingID: listingView.ID(),
		source:    source,
		listing:   listingView,
		index:     linemap.Build(nil, source.ID()),
	}

	s.visible = s.bothVisible()

	s.subs = append(s.subs,
		bus.SubscribeSelection(s.HandleSelection),
		bus.SubscribeViewSet(func(event.ViewSetChanged) { s.HandleViewSetChange() }),
		bus.SubscribeListing(func(ev event.ListingChanged) { s.HandleListingChange(ev.ID) }),
	)

	if s.visible {
		if err := s.Reload(); err != nil {
			s.log.Error().Err(err).Msg("initial reload failed")
		}
	}

	return s
}

// bothVisible reports whether the host currently shows a view for each
// of the pair's documents.
func (s *Synchronizer) bothVisible() bool {
	var src, lst bool
	for _, v := range s.host.VisibleViews() {
		switch v.ID() {
		case s.sourceID:
			src = true
		case s.listingID:
			lst = true
		}
	}
	return src && lst
}

// Close cancels all event subscriptions. No event reaches the
// synchronizer afterwards.
func (s *Synchronizer) Close() {
	for _, sub := range s.subs {
		sub.Cancel()
	}
	s.subs = nil
}

// Visible reports whether both views of the pair are currently shown.
func (s *Synchronizer) Visible() bool { return s.visible }

// Index returns the current correspondence index snapshot.
func (s *Synchronizer) Index() *linemap.Index { return s.index }

// HandleSelection routes a tagged selection event to the matching
// direction. Selection events arriving while the pair is hidden are
// ignored: no decoration may be issued in the Hidden state.
func (s *Synchronizer) HandleSelection(ev event.Selection) {
	if !s.visible {
		return
	}

	switch ev.Role {
	case event.RoleSource:
		s.syncFromSource(ev.Line)
	case event.RoleListing:
		s.syncFromListing(ev.Line)
	}
}

// syncFromSource highlights the selected source line and the listing
// lines generated from it.
func (s *Synchronizer) syncFromSource(line int) {
	s.source.ApplyHighlight([]int{line})

	bucket := s.index.Lookup(line)
	if len(bucket) == 0 {
		s.listing.ApplyHighlight(nil)
		return
	}

	// The index may be ahead of the view mid-update; entries past the
	// view's current end are skipped, never fatal.
	total := s.listing.LineCount()
	surviving := make([]int, 0, len(bucket))
	for _, idx := range bucket {
		if idx < total {
			surviving = append(surviving, idx)
		}
	}

	s.listing.ApplyHighlight(surviving)
	if len(surviving) > 0 {
		s.listing.Reveal(surviving[0])
	}
}

// syncFromListing highlights the selected listing line and, when it
// resolves to the current source document, the originating source line.
func (s *Synchronizer) syncFromListing(line int) {
	s.listing.ApplyHighlight([]int{line})

	if line < 0 || line >= len(s.lines) {
		s.source.ApplyHighlight(nil)
		return
	}

	src, ok := linemap.Resolve(s.lines[line], s.source.ID())
	if !ok {
		s.source.ApplyHighlight(nil)
		return
	}

	s.source.ApplyHighlight([]int{src})
	s.source.Reveal(src)
}

// HandleViewSetChange re-associates the logical documents with whatever
// concrete views now display them and drives the visibility state
// machine. A document can move to a different view slot without
// closing; the previous handle is kept when none is found.
func (s *Synchronizer) HandleViewSetChange() {
	var foundSource, foundListing View
	for _, v := range s.host.VisibleViews() {
		switch v.ID() {
		case s.sourceID:
			foundSource = v
		case s.listingID:
			foundListing = v
		}
	}

	if foundSource != nil {
		s.source = foundSource
	}
	if foundListing != nil {
		s.listing = foundListing
	}

	visible := foundSource != nil && foundListing != nil
	if visible == s.visible {
		return
	}
	s.visible = visible

	if visible {
		// Decorations were cleared while hidden and the listing may
		// have changed underneath; rebuild everything.
		if err := s.Reload(); err != nil {
			s.log.Error().Err(err).Msg("reload on show failed")
		}
		return
	}

	s.source.ApplyHighlight(nil)
	s.source.ApplyDim(nil)
	s.listing.ApplyHighlight(nil)
}

// HandleListingChange reacts to a provider change notification. A
// non-matching identity is ignored. The index is rebuilt regardless of
// visibility; the dim decoration is applied only while visible.
func (s *Synchronizer) HandleListingChange(id string) {
	if id != s.listingID {
		return
	}
	if err := s.Reload(); err != nil {
		s.log.Error().Err(err).Str("listing", id).Msg("reload on listing change failed")
	}
}

// Reload fetches the current listing, swaps in a freshly built index,
// and reapplies the dim-unused decoration. Idempotent for an unchanged
// listing.
func (s *Synchronizer) Reload() error {
	l, err := s.provider.Listing(s.listingID)
	if err != nil {
		return err
	}

	s.lines = l.Lines
	s.index = linemap.Build(l.Lines, s.sourceID)

	s.log.Debug().
		Int("listing_lines", len(s.lines)).
		Int("mapped_source_lines", s.index.Len()).
		Msg("index rebuilt")

	s.applyDim()
	return nil
}

// applyDim recomputes the unused-line set and applies it to the source
// view, subject to visibility and the per-document configuration flag.
func (s *Synchronizer) applyDim() {
	if !s.visible {
		return
	}
	if s.opts.DimUnused != nil && !s.opts.DimUnused(s.sourceID) {
		s.source.ApplyDim(nil)
		return
	}
	s.source.ApplyDim(s.index.Unused(s.source.LineCount()))
}
