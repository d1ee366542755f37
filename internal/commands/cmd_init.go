package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/hartfelt/asmlens/internal/core/config"
	"github.com/hartfelt/asmlens/internal/core/listing"
	"github.com/hartfelt/asmlens/internal/core/styles"
)

type InitCmd struct {
	flags *Flags
	yes   bool
	force bool
}

func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Initialize asmlens configuration with an interactive wizard",
		UsageText: "asmlens init [options]",
		Description: `Sets up asmlens for first-time use with an interactive wizard.

The wizard will generate a config file with the listing generation
command, annotation format, and theme.

Use --yes to accept all defaults without prompts.
Use --force to overwrite existing configuration.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "accept defaults without prompting",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "overwrite existing configuration",
				Destination: &cmd.force,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *InitCmd) run(_ context.Context, _ *cli.Command) error {
	path := cmd.flags.ConfigPath

	if _, err := os.Stat(path); err == nil && !cmd.force {
		if cmd.yes {
			return fmt.Errorf("config exists at %s; use --force to overwrite", path)
		}

		var overwrite bool
		err := huh.NewConfirm().
			Title("Config file already exists").
			Description(path + "\nOverwrite? (a backup will be created)").
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Init cancelled")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	dimUnused := true

	if !cmd.yes {
		format := string(cfg.Listing.Format)

		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Listing command").
				Description("Command producing the listing; {src} is replaced with the source path").
				Value(&cfg.Listing.Command),
			huh.NewSelect[string]().
				Title("Listing format").
				Description("How source-line annotations are parsed").
				Options(
					huh.NewOption("auto-detect", string(listing.FormatAuto)),
					huh.NewOption("assembler (.loc directives)", string(listing.FormatGas)),
					huh.NewOption("objdump (file:line headers)", string(listing.FormatObjdump)),
					huh.NewOption("plain (no annotations)", string(listing.FormatPlain)),
				).
				Value(&format),
			huh.NewSelect[string]().
				Title("Theme").
				Options(themeOptions()...).
				Value(&cfg.Theme),
			huh.NewConfirm().
				Title("Dim source lines with no listing output?").
				Value(&dimUnused),
		))
		if err := form.Run(); err != nil {
			return err
		}

		cfg.Listing.Format = listing.Format(format)
	}

	if !dimUnused {
		cfg.DimUnused = &dimUnused
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := backupConfig(path); err != nil {
		return fmt.Errorf("backup config: %w", err)
	}

	if err := writeConfig(cfg, path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Created config: %s\n", path)
	fmt.Println("Run 'asmlens <source-file>' to open the split view")

	return nil
}

func themeOptions() []huh.Option[string] {
	names := styles.ThemeNames()
	opts := make([]huh.Option[string], len(names))
	for i, n := range names {
		opts[i] = huh.NewOption(n, n)
	}
	return opts
}

// backupConfig moves an existing config aside with a timestamp suffix.
func backupConfig(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
	if err := os.Rename(path, backup); err != nil {
		return err
	}
	fmt.Printf("Backed up config to: %s\n", backup)
	return nil
}

func writeConfig(cfg config.Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
