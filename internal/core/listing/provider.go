package listing

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/hartfelt/asmlens/internal/core/event"
	"github.com/hartfelt/asmlens/pkg/executil"
)

// srcPlaceholder marks where the source path is substituted in a
// configured listing command.
const srcPlaceholder = "{src}"

// generation timeout for one toolchain invocation.
const commandTimeout = 30 * time.Second

// Provider supplies the current listing for a document identity.
// Listing must be idempotent for unchanged input and cheap to call on
// every reload; implementations cache by content fingerprint.
type Provider interface {
	Listing(id string) (*Listing, error)
	// Refresh regenerates the listing. When the content actually
	// changed, the new snapshot replaces the cached one and a
	// ListingChanged event is published.
	Refresh(id string) (changed bool, err error)
}

type cached struct {
	sum     uint64
	listing *Listing
}

// CommandProvider builds listings by running a configured toolchain
// command (compiler or objdump) and parsing its stdout.
type CommandProvider struct {
	command string
	format  Format
	exec    executil.Executor
	bus     *event.Bus
	log     zerolog.Logger

	mu    sync.Mutex
	cache map[string]cached
}

// NewCommandProvider creates a provider running command, an argv
// template containing the {src} placeholder.
func NewCommandProvider(command string, format Format, exec executil.Executor, bus *event.Bus, log zerolog.Logger) *CommandProvider {
	return &CommandProvider{
		command: command,
		format:  format,
		exec:    exec,
		bus:     bus,
		log:     log.With().Str("component", "listing-provider").Logger(),
		cache:   map[string]cached{},
	}
}

// Listing returns the cached listing for id, generating it on first use.
func (p *CommandProvider) Listing(id string) (*Listing, error) {
	p.mu.Lock()
	if c, ok := p.cache[id]; ok {
		p.mu.Unlock()
		return c.listing, nil
	}
	p.mu.Unlock()

	_, err := p.Refresh(id)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache[id].listing, nil
}

// Refresh regenerates the listing for id and publishes a change event
// when its content fingerprint differs from the cached one.
func (p *CommandProvider) Refresh(id string) (bool, error) {
	src, ok := SourcePath(id)
	if !ok {
		return false, fmt.Errorf("not a listing identity: %q", id)
	}

	out, err := p.generate(src)
	if err != nil {
		return false, fmt.Errorf("generate listing for %s: %w", src, err)
	}

	return p.store(id, out), nil
}

func (p *CommandProvider) generate(src string) ([]byte, error) {
	args := strings.Fields(p.command)
	if len(args) == 0 {
		return nil, fmt.Errorf("empty listing command")
	}
	for i, a := range args {
		args[i] = strings.ReplaceAll(a, srcPlaceholder, src)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	start := time.Now()
	out, err := p.exec.Output(ctx, args[0], args[1:]...)
	if err != nil {
		return nil, err
	}

	p.log.Debug().
		Str("source", src).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(out)).
		Msg("listing generated")

	return out, nil
}

// store parses and caches out for id, returning whether the content
// changed. Publishes on change.
func (p *CommandProvider) store(id string, out []byte) bool {
	sum := xxhash.Sum64(out)

	p.mu.Lock()
	prev, had := p.cache[id]
	if had && prev.sum == sum {
		p.mu.Unlock()
		return false
	}
	l := Parse(id, string(out), p.format)
	p.cache[id] = cached{sum: sum, listing: l}
	p.mu.Unlock()

	if had && p.bus != nil {
		p.bus.PublishListing(event.ListingChanged{ID: id})
	}
	return had
}

// FileProvider serves a pre-generated listing read from a file on disk.
// The file maps to exactly one document identity.
type FileProvider struct {
	id     string
	path   string
	format Format
	bus    *event.Bus

	mu     sync.Mutex
	cached cached
	loaded bool
}

// NewFileProvider creates a provider serving id from the listing file
// at path.
func NewFileProvider(id, path string, format Format, bus *event.Bus) *FileProvider {
	return &FileProvider{id: id, path: path, format: format, bus: bus}
}

// Listing returns the cached listing, reading the file on first use.
func (p *FileProvider) Listing(id string) (*Listing, error) {
	if id != p.id {
		return nil, fmt.Errorf("unknown listing identity: %q", id)
	}

	p.mu.Lock()
	if p.loaded {
		l := p.cached.listing
		p.mu.Unlock()
		return l, nil
	}
	p.mu.Unlock()

	if _, err := p.Refresh(id); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cached.listing, nil
}

// Refresh re-reads the listing file, publishing a change event when the
// content fingerprint differs.
func (p *FileProvider) Refresh(id string) (bool, error) {
	if id != p.id {
		return false, fmt.Errorf("unknown listing identity: %q", id)
	}

	out, err := os.ReadFile(p.path)
	if err != nil {
		return false, fmt.Errorf("read listing file: %w", err)
	}

	sum := xxhash.Sum64(out)

	p.mu.Lock()
	if p.loaded && p.cached.sum == sum {
		p.mu.Unlock()
		return false, nil
	}
	wasLoaded := p.loaded
	p.cached = cached{sum: sum, listing: Parse(id, string(out), p.format)}
	p.loaded = true
	p.mu.Unlock()

	if wasLoaded && p.bus != nil {
		p.bus.PublishListing(event.ListingChanged{ID: id})
	}
	return wasLoaded, nil
}
