package viewsync

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hartfelt/asmlens/internal/core/event"
	"github.com/hartfelt/asmlens/internal/core/listing"
)

type fakeView struct {
	id        string
	lineCount int

	highlights [][]int
	dims       [][]int
	revealed   []int
}

func (v *fakeView) ID() string     { return v.id }
func (v *fakeView) LineCount() int { return v.lineCount }

func (v *fakeView) ApplyHighlight(lines []int) {
	v.highlights = append(v.highlights, append([]int{}, lines...))
}

func (v *fakeView) ApplyDim(lines []int) {
	v.dims = append(v.dims, append([]int{}, lines...))
}

func (v *fakeView) Reveal(line int) { v.revealed = append(v.revealed, line) }

func (v *fakeView) lastHighlight() []int {
	if len(v.highlights) == 0 {
		return nil
	}
	return v.highlights[len(v.highlights)-1]
}

func (v *fakeView) lastDim() []int {
	if len(v.dims) == 0 {
		return nil
	}
	return v.dims[len(v.dims)-1]
}

type fakeHost struct {
	views []View
}

func (h *fakeHost) VisibleViews() []View { return h.views }

type fakeProvider struct {
	l     *listing.Listing
	err   error
	calls int
}

func (p *fakeProvider) Listing(string) (*listing.Listing, error) {
	p.calls++
	return p.l, p.err
}

func (p *fakeProvider) Refresh(string) (bool, error) { return false, nil }

const sourcePath = "/proj/a.c"

func ref(file string, line int) *listing.SourceRef {
	return &listing.SourceRef{File: file, Line: line}
}

// sampleListing is the canonical scenario: index {2: [1,2], 9: [3]}
// against a 12-line source file.
func sampleListing() *listing.Listing {
	id := listing.ID(sourcePath)
	return &listing.Listing{ID: id, Lines: []listing.Line{
		{Index: 0, Text: "main:"},
		{Index: 1, Text: "push %rbp", Source: ref("a.c", 3)},
		{Index: 2, Text: "mov %rsp,%rbp", Source: ref("a.c", 3)},
		{Index: 3, Text: "ret", Source: ref("a.c", 10)},
	}}
}

type fixture struct {
	bus      *event.Bus
	host     *fakeHost
	provider *fakeProvider
	source   *fakeView
	asm      *fakeView
	sync     *Synchronizer
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	f := &fixture{
		bus:      event.NewBus(),
		provider: &fakeProvider{l: sampleListing()},
		source:   &fakeView{id: sourcePath, lineCount: 12},
		asm:      &fakeView{id: listing.ID(sourcePath), lineCount: 4},
	}
	f.host = &fakeHost{views: []View{f.source, f.asm}}
	f.sync = New(f.host, f.provider, f.bus, f.source, f.asm, opts, zerolog.Nop())
	return f
}

func TestNew_VisiblePairReloadsAndDims(t *testing.T) {
	f := newFixture(t, Options{})

	require.True(t, f.sync.Visible())
	assert.Equal(t, 1, f.provider.calls)

	want := []int{0, 1, 3, 4, 5, 6, 7, 8, 10, 11}
	assert.Equal(t, want, f.source.lastDim())
}

func TestNew_HiddenPairDoesNothing(t *testing.T) {
	bus := event.NewBus()
	provider := &fakeProvider{l: sampleListing()}
	source := &fakeView{id: sourcePath, lineCount: 12}
	asm := &fakeView{id: listing.ID(sourcePath), lineCount: 4}
	host := &fakeHost{views: []View{source}} // listing view not shown

	s := New(host, provider, bus, source, asm, Options{}, zerolog.Nop())

	assert.False(t, s.Visible())
	assert.Equal(t, 0, provider.calls)
	assert.Empty(t, source.dims)
}

func TestSourceSelection_HighlightsBucket(t *testing.T) {
	f := newFixture(t, Options{})

	f.bus.PublishSelection(event.Selection{Role: event.RoleSource, Line: 2})

	assert.Equal(t, []int{2}, f.source.lastHighlight())
	assert.Equal(t, []int{1, 2}, f.asm.lastHighlight())
	assert.Equal(t, []int{1}, f.asm.revealed, "first surviving range is revealed")
}

func TestSourceSelection_NoMappingClearsListing(t *testing.T) {
	f := newFixture(t, Options{})

	// Establish a highlight first, then select an unmapped line.
	f.bus.PublishSelection(event.Selection{Role: event.RoleSource, Line: 2})
	require.Equal(t, []int{1, 2}, f.asm.lastHighlight())

	f.bus.PublishSelection(event.Selection{Role: event.RoleSource, Line: 5})

	assert.Equal(t, []int{5}, f.source.lastHighlight())
	assert.Empty(t, f.asm.lastHighlight(), "stale highlight must be replaced, not kept")
	assert.Equal(t, []int{1}, f.asm.revealed, "no reveal for an empty batch")
}

func TestSourceSelection_StaleIndexEntriesSkipped(t *testing.T) {
	f := newFixture(t, Options{})

	// The listing view shrank below the index's reach.
	f.asm.lineCount = 2

	f.bus.PublishSelection(event.Selection{Role: event.RoleSource, Line: 2})
	assert.Equal(t, []int{1}, f.asm.lastHighlight(), "index 2 is out of range and skipped")

	f.bus.PublishSelection(event.Selection{Role: event.RoleSource, Line: 9})
	assert.Empty(t, f.asm.lastHighlight(), "all entries stale: empty batch, no fault")
	assert.Equal(t, []int{1}, f.asm.revealed)
}

func TestListingSelection_ResolvesSource(t *testing.T) {
	f := newFixture(t, Options{})

	f.bus.PublishSelection(event.Selection{Role: event.RoleListing, Line: 3})

	assert.Equal(t, []int{3}, f.asm.lastHighlight())
	assert.Equal(t, []int{9}, f.source.lastHighlight())
	assert.Equal(t, []int{9}, f.source.revealed)
}

func TestListingSelection_NoSourceClearsSource(t *testing.T) {
	f := newFixture(t, Options{})

	f.bus.PublishSelection(event.Selection{Role: event.RoleListing, Line: 3})
	require.Equal(t, []int{9}, f.source.lastHighlight())

	f.bus.PublishSelection(event.Selection{Role: event.RoleListing, Line: 0})

	assert.Equal(t, []int{0}, f.asm.lastHighlight())
	assert.Empty(t, f.source.lastHighlight())
	assert.Equal(t, []int{9}, f.source.revealed, "no reveal without a resolved line")
}

func TestListingSelection_BeyondCachedListingClears(t *testing.T) {
	f := newFixture(t, Options{})

	f.bus.PublishSelection(event.Selection{Role: event.RoleListing, Line: 40})

	assert.Equal(t, []int{40}, f.asm.lastHighlight())
	assert.Empty(t, f.source.lastHighlight())
}

func TestRoundTripLocality(t *testing.T) {
	f := newFixture(t, Options{})

	// Source line 2 maps to bucket [1,2]; selecting the bucket's first
	// listing line must come back to source line 2.
	f.bus.PublishSelection(event.Selection{Role: event.RoleSource, Line: 2})
	first := f.asm.lastHighlight()[0]

	f.bus.PublishSelection(event.Selection{Role: event.RoleListing, Line: first})
	assert.Equal(t, []int{2}, f.source.lastHighlight())
}

func TestHiddenStateIsolation(t *testing.T) {
	f := newFixture(t, Options{})

	// Hide the listing view.
	f.host.views = []View{f.source}
	f.bus.PublishViewSet(event.ViewSetChanged{})
	require.False(t, f.sync.Visible())

	sourceCalls := len(f.source.highlights)
	asmCalls := len(f.asm.highlights)

	f.bus.PublishSelection(event.Selection{Role: event.RoleSource, Line: 2})
	f.bus.PublishSelection(event.Selection{Role: event.RoleListing, Line: 1})

	assert.Equal(t, sourceCalls, len(f.source.highlights), "no decoration while hidden")
	assert.Equal(t, asmCalls, len(f.asm.highlights), "no decoration while hidden")
}

func TestVisibilityTransitions(t *testing.T) {
	f := newFixture(t, Options{})
	require.Equal(t, 1, f.provider.calls)

	// Visible -> Hidden clears everything.
	f.host.views = nil
	f.bus.PublishViewSet(event.ViewSetChanged{})

	assert.Empty(t, f.source.lastHighlight())
	assert.Empty(t, f.source.lastDim())
	assert.Empty(t, f.asm.lastHighlight())

	// Observing the same hidden state again is ignored.
	clears := len(f.source.highlights)
	f.bus.PublishViewSet(event.ViewSetChanged{})
	assert.Equal(t, clears, len(f.source.highlights))

	// Hidden -> Visible reloads and re-dims.
	f.host.views = []View{f.source, f.asm}
	f.bus.PublishViewSet(event.ViewSetChanged{})

	require.True(t, f.sync.Visible())
	assert.Equal(t, 2, f.provider.calls)
	assert.Equal(t, []int{0, 1, 3, 4, 5, 6, 7, 8, 10, 11}, f.source.lastDim())
}

func TestViewSetChange_ReassociatesHandles(t *testing.T) {
	f := newFixture(t, Options{})

	// The source document moved to a new view slot: same identity, new
	// handle. Keep it visible throughout.
	moved := &fakeView{id: sourcePath, lineCount: 12}
	f.host.views = []View{moved, f.asm}
	f.bus.PublishViewSet(event.ViewSetChanged{})

	require.True(t, f.sync.Visible())

	f.bus.PublishSelection(event.Selection{Role: event.RoleSource, Line: 2})
	assert.Equal(t, []int{2}, moved.lastHighlight(), "decorations go to the new handle")
}

func TestListingChange_RebuildsIndex(t *testing.T) {
	f := newFixture(t, Options{})
	require.Equal(t, 1, f.provider.calls)

	// Replace the provider's listing wholesale: a.c:3 now yields one
	// line and a.c:5 appears.
	id := listing.ID(sourcePath)
	f.provider.l = &listing.Listing{ID: id, Lines: []listing.Line{
		{Index: 0, Text: "push %rbp", Source: ref("a.c", 3)},
		{Index: 1, Text: "ret", Source: ref("a.c", 5)},
	}}

	f.bus.PublishListing(event.ListingChanged{ID: id})

	assert.Equal(t, 2, f.provider.calls)
	assert.Equal(t, []int{0}, f.sync.Index().Lookup(2))
	assert.Equal(t, []int{1}, f.sync.Index().Lookup(4))
	assert.Nil(t, f.sync.Index().Lookup(9))
}

func TestListingChange_OtherIdentityIgnored(t *testing.T) {
	f := newFixture(t, Options{})
	require.Equal(t, 1, f.provider.calls)

	f.bus.PublishListing(event.ListingChanged{ID: listing.ID("/proj/b.c")})
	assert.Equal(t, 1, f.provider.calls)
}

func TestListingChange_WhileHiddenRebuildsWithoutDim(t *testing.T) {
	f := newFixture(t, Options{})

	f.host.views = nil
	f.bus.PublishViewSet(event.ViewSetChanged{})
	dims := len(f.source.dims)

	id := listing.ID(sourcePath)
	f.provider.l = &listing.Listing{ID: id, Lines: []listing.Line{
		{Index: 0, Text: "ret", Source: ref("a.c", 1)},
	}}
	f.bus.PublishListing(event.ListingChanged{ID: id})

	assert.Equal(t, []int{0}, f.sync.Index().Lookup(0), "index rebuilt while hidden")
	assert.Equal(t, dims, len(f.source.dims), "no dim decoration while hidden")
}

func TestReloadIdempotence(t *testing.T) {
	f := newFixture(t, Options{})

	require.NoError(t, f.sync.Reload())
	firstUnused := f.source.lastDim()
	firstIndex := f.sync.Index()

	require.NoError(t, f.sync.Reload())
	assert.Equal(t, firstUnused, f.source.lastDim())
	assert.Equal(t, firstIndex.SourceLines(), f.sync.Index().SourceLines())
	assert.Equal(t, firstIndex.Lookup(2), f.sync.Index().Lookup(2))
	assert.Equal(t, firstIndex.Lookup(9), f.sync.Index().Lookup(9))
}

func TestReload_ProviderFailurePropagates(t *testing.T) {
	f := newFixture(t, Options{})

	f.provider.err = errors.New("toolchain exploded")
	err := f.sync.Reload()
	require.Error(t, err)

	// The previous index survives a failed reload.
	assert.Equal(t, []int{1, 2}, f.sync.Index().Lookup(2))
}

func TestDimDisabledPerDocument(t *testing.T) {
	f := newFixture(t, Options{
		DimUnused: func(id string) bool { return false },
	})

	assert.Empty(t, f.source.lastDim(), "disabled dim clears rather than paints")
}

func TestClose_StopsAllDelivery(t *testing.T) {
	f := newFixture(t, Options{})
	require.Equal(t, 1, f.provider.calls)

	f.sync.Close()

	f.bus.PublishSelection(event.Selection{Role: event.RoleSource, Line: 2})
	f.bus.PublishViewSet(event.ViewSetChanged{})
	f.bus.PublishListing(event.ListingChanged{ID: listing.ID(sourcePath)})

	assert.Equal(t, 1, f.provider.calls)
	assert.Empty(t, f.source.highlights)
	assert.Empty(t, f.asm.highlights)
}
