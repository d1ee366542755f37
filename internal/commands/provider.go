package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hartfelt/asmlens/internal/core/event"
	"github.com/hartfelt/asmlens/internal/core/listing"
	"github.com/hartfelt/asmlens/pkg/executil"
)

// providerOpts collects the listing-source flags shared by the view and
// index commands.
type providerOpts struct {
	listingFile string
	command     string
	format      string
}

// buildProvider resolves the listing source for sourcePath. An explicit
// listing file wins over a generation command; flag overrides win over
// config.
func buildProvider(flags *Flags, opts providerOpts, sourcePath string, bus *event.Bus) (listing.Provider, error) {
	format := flags.Config.Listing.Format
	if opts.format != "" {
		format = listing.Format(opts.format)
		if !format.IsValid() {
			return nil, fmt.Errorf("unknown listing format: %q", opts.format)
		}
	}

	if opts.listingFile != "" {
		return listing.NewFileProvider(listing.ID(sourcePath), opts.listingFile, format, bus), nil
	}

	command := flags.Config.Listing.Command
	if opts.command != "" {
		command = opts.command
	}
	if command == "" {
		return nil, fmt.Errorf("no listing command configured; set listing.command or pass --listing")
	}

	return listing.NewCommandProvider(command, format, &executil.RealExecutor{}, bus, log.Logger), nil
}
