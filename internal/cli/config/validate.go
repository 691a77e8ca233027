package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SterlingPeet/fprime-extras/pkg/check"
	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/lint"
)

// Validate checks the configuration against the known rule and check
// identifiers. Unknown identifiers in exclusions or severity overrides
// return a *check.ConfigurationError.
func (c *Config) Validate(known func(id string) bool) error {
	ids := append([]string{}, c.Exclusions...)
	for id := range c.Severity {
		ids = append(ids, id)
	}
	if err := check.ValidateIdentifiers(ids, known); err != nil {
		return err
	}

	var bad []string
	for id, sev := range c.Severity {
		if _, ok := core.ParseSeverity(sev); !ok {
			bad = append(bad, fmt.Sprintf("%s: %q", id, sev))
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("invalid severity override (want warning, error or critical): %s", strings.Join(bad, ", "))
	}

	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// LintConfig converts the configuration into the linter's view of it.
// Call Validate first; unparsable severities are skipped here.
func (c *Config) LintConfig() *lint.Config {
	cfg := lint.NewConfig().Exclude(c.Exclusions...)
	for id, s := range c.Severity {
		if sev, ok := core.ParseSeverity(s); ok {
			cfg.SetSeverity(id, sev)
		}
	}
	for name, value := range c.Args {
		cfg.SetArg(name, value)
	}
	cfg.Filters = append(cfg.Filters, c.Filters...)
	cfg.FprimeRoot = c.FprimeRoot
	return cfg
}
