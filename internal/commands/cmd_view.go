package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hartfelt/asmlens/internal/core/event"
	"github.com/hartfelt/asmlens/internal/tui"
)

type ViewCmd struct {
	flags *Flags

	provider providerOpts
}

// NewViewCmd creates a new view command
func NewViewCmd(flags *Flags) *ViewCmd {
	return &ViewCmd{flags: flags}
}

// Flags returns the view-specific flags for registration on the root command
func (cmd *ViewCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "listing",
			Aliases:     []string{"l"},
			Usage:       "path to a pre-generated listing file (skips the generation command)",
			Destination: &cmd.provider.listingFile,
		},
		&cli.StringFlag{
			Name:        "command",
			Usage:       "listing generation command with a {src} placeholder (overrides config)",
			Destination: &cmd.provider.command,
		},
		&cli.StringFlag{
			Name:        "format",
			Usage:       "listing annotation format (auto, gas, objdump, plain)",
			Destination: &cmd.provider.format,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *ViewCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *ViewCmd) run(_ context.Context, c *cli.Command) error {
	sourcePath := c.Args().First()
	if sourcePath == "" {
		return fmt.Errorf("usage: asmlens [options] <source-file>")
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return fmt.Errorf("source file: %w", err)
	}

	bus := event.NewBus()

	provider, err := buildProvider(cmd.flags, cmd.provider, sourcePath, bus)
	if err != nil {
		return err
	}

	m, err := tui.New(cmd.flags.Config, sourcePath, provider, bus, log.Logger)
	if err != nil {
		return fmt.Errorf("open %s: %w", sourcePath, err)
	}

	return tui.Run(m)
}
