package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/hartfelt/asmlens/internal/core/listing"
	"github.com/hartfelt/asmlens/internal/core/styles"
)

// Validate checks structural validity: format and theme names, rule
// patterns, and the listing command template.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("listing.format", c.Listing.Format, validFormat),
		criterio.Run("listing.command", c.Listing.Command, commandHasPlaceholder),
		criterio.Run("theme", c.Theme, knownTheme),
		c.validateRules(),
	)
}

func validFormat(f listing.Format) error {
	if !f.IsValid() {
		return fmt.Errorf("unknown format %q (want auto, gas, objdump, or plain)", f)
	}
	return nil
}

// commandHasPlaceholder requires the {src} placeholder so the command
// can be applied to any source document. An empty command is allowed;
// it means listings must come from a file.
func commandHasPlaceholder(cmd string) error {
	if cmd == "" {
		return nil
	}
	if !strings.Contains(cmd, "{src}") {
		return fmt.Errorf("missing {src} placeholder")
	}
	return nil
}

func knownTheme(name string) error {
	if name == "" {
		return nil
	}
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (known: %s)", name, strings.Join(styles.ThemeNames(), ", "))
	}
	return nil
}

func (c *Config) validateRules() error {
	var errs criterio.FieldErrorsBuilder
	for i, rule := range c.Rules {
		if rule.Pattern == "" {
			errs = errs.Append(fmt.Sprintf("rules[%d].pattern", i), fmt.Errorf("pattern is required"))
			continue
		}
		if !doublestar.ValidatePattern(rule.Pattern) {
			errs = errs.Append(fmt.Sprintf("rules[%d].pattern", i), fmt.Errorf("invalid glob %q", rule.Pattern))
		}
	}
	return errs.ToError()
}
