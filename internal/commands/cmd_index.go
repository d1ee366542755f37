package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hartfelt/asmlens/internal/core/event"
	"github.com/hartfelt/asmlens/internal/core/linemap"
	"github.com/hartfelt/asmlens/internal/core/listing"
	"github.com/hartfelt/asmlens/pkg/iojson"
)

type IndexCmd struct {
	flags *Flags

	provider   providerOpts
	jsonOutput bool
	unusedOnly bool
}

// NewIndexCmd creates a new index command
func NewIndexCmd(flags *Flags) *IndexCmd {
	return &IndexCmd{flags: flags}
}

// Register adds the index command to the application
func (cmd *IndexCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "index",
		Usage:     "Print the source-to-listing line correspondence",
		UsageText: "asmlens index [options] <source-file>",
		Description: `Generates the listing for a source file and prints which listing
lines each source line produced.

Use --unused to print only the source lines with no listing output.
Output is JSON lines when stdout is not a terminal or --json is set.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "unused",
				Usage:       "print only source lines with no listing output",
				Destination: &cmd.unusedOnly,
			},
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
		},
		Action: cmd.run,
	})

	return app
}

// indexEntry is the JSON output format for asmlens index.
type indexEntry struct {
	SourceLine   int   `json:"source_line"`
	ListingLines []int `json:"listing_lines"`
}

func (cmd *IndexCmd) run(_ context.Context, c *cli.Command) error {
	sourcePath := c.Args().First()
	if sourcePath == "" {
		return fmt.Errorf("usage: asmlens index [options] <source-file>")
	}

	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("read source file: %w", err)
	}
	lineCount := len(strings.Split(strings.TrimRight(string(src), "\n"), "\n"))

	provider, err := buildProvider(cmd.flags, cmd.provider, sourcePath, event.NewBus())
	if err != nil {
		return err
	}

	id := listing.ID(sourcePath)
	l, err := provider.Listing(id)
	if err != nil {
		return err
	}

	index := linemap.Build(l.Lines, sourcePath)
	out := c.Root().Writer

	asJSON := cmd.jsonOutput || !term.IsTerminal(int(os.Stdout.Fd()))

	if cmd.unusedOnly {
		return cmd.printUnused(out, index.Unused(lineCount), asJSON)
	}

	if asJSON {
		for _, s := range index.SourceLines() {
			entry := indexEntry{SourceLine: s + 1, ListingLines: oneBased(index.Lookup(s))}
			if err := iojson.WriteLine(out, entry); err != nil {
				return fmt.Errorf("encode entry: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SOURCE\tLISTING LINES")
	for _, s := range index.SourceLines() {
		_, _ = fmt.Fprintf(w, "%d\t%s\n", s+1, joinInts(oneBased(index.Lookup(s))))
	}
	_ = w.Flush()

	fmt.Fprintf(os.Stderr, "%d of %d source lines produced listing output\n", index.Len(), lineCount)
	return nil
}

func (cmd *IndexCmd) printUnused(out io.Writer, unused []int, asJSON bool) error {
	if asJSON {
		return iojson.WriteLine(out, map[string][]int{"unused_lines": oneBased(unused)})
	}
	for _, s := range unused {
		_, _ = fmt.Fprintln(out, s+1)
	}
	return nil
}

func oneBased(lines []int) []int {
	out := make([]int, len(lines))
	for i, l := range lines {
		out[i] = l + 1
	}
	return out
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}
