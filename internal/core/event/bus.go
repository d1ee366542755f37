// Package event provides a synchronous in-process bus for the three
// event classes that drive view synchronization: selection changes,
// visible-view-set changes, and listing content changes.
//
// Dispatch is inline: Publish calls every subscriber before returning,
// so one event is always handled to completion before the next. The bus
// is safe for use from the Bubble Tea update loop.
package event

import "sync"

// Role identifies which logical view raised a selection event.
type Role int

const (
	RoleSource Role = iota
	RoleListing
)

// String returns the lowercase role name.
func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleListing:
		return "listing"
	default:
		return "unknown"
	}
}

// Selection is raised when the selected line changes in a view.
// Line is the 0-based starting line of the selection.
type Selection struct {
	Role Role
	Line int
}

// ViewSetChanged is raised when the host's set of visible views changes,
// including views being hidden, re-shown, or moved between slots.
type ViewSetChanged struct{}

// ListingChanged carries the canonical identity of a listing whose
// content changed at the provider.
type ListingChanged struct {
	ID string
}

// Subscription is a handle to a registered callback. Cancel removes the
// callback; after Cancel returns the callback will not be invoked again.
type Subscription struct {
	cancel func()
}

// Cancel releases the subscription. Safe to call more than once.
func (s Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Bus fans events out to subscribers in registration order.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	selection map[int]func(Selection)
	viewSet   map[int]func(ViewSetChanged)
	listing   map[int]func(ListingChanged)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		selection: map[int]func(Selection){},
		viewSet:   map[int]func(ViewSetChanged){},
		listing:   map[int]func(ListingChanged){},
	}
}

// SubscribeSelection registers a callback for selection events.
func (b *Bus) SubscribeSelection(fn func(Selection)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.selection[id] = fn
	return Subscription{cancel: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.selection, id)
	}}
}

// SubscribeViewSet registers a callback for visible-view-set changes.
func (b *Bus) SubscribeViewSet(fn func(ViewSetChanged)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.viewSet[id] = fn
	return Subscription{cancel: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.viewSet, id)
	}}
}

// SubscribeListing registers a callback for listing content changes.
func (b *Bus) SubscribeListing(fn func(ListingChanged)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.listing[id] = fn
	return Subscription{cancel: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listing, id)
	}}
}

// PublishSelection dispatches a selection event to all subscribers.
func (b *Bus) PublishSelection(ev Selection) {
	for _, fn := range b.snapshotSelection() {
		fn(ev)
	}
}

// PublishViewSet dispatches a view-set change to all subscribers.
func (b *Bus) PublishViewSet(ev ViewSetChanged) {
	for _, fn := range b.snapshotViewSet() {
		fn(ev)
	}
}

// PublishListing dispatches a listing change to all subscribers.
func (b *Bus) PublishListing(ev ListingChanged) {
	for _, fn := range b.snapshotListing() {
		fn(ev)
	}
}

// Snapshots are taken under lock so a subscriber cancelling itself (or
// another) during dispatch cannot corrupt iteration. Ordering follows
// registration order.

func (b *Bus) snapshotSelection() []func(Selection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ordered(b.selection)
}

func (b *Bus) snapshotViewSet() []func(ViewSetChanged) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ordered(b.viewSet)
}

func (b *Bus) snapshotListing() []func(ListingChanged) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ordered(b.listing)
}

func ordered[T any](m map[int]func(T)) []func(T) {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	// Insertion ids are monotonically increasing.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	out := make([]func(T), 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}
