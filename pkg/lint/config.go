package lint

import (
	"log/slog"

	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
)

// Config controls which diagnostics are produced and at what severity.
type Config struct {
	// Exclusions holds diagnostic identifiers that are never reported.
	Exclusions map[string]bool

	// SeverityOverrides replaces the default severity of an identifier.
	SeverityOverrides map[string]core.Severity

	// Filters are patterns that drop topology check problems whose
	// location or identifier matches.
	Filters []string

	// Args are extra named arguments for rules that declare them.
	Args map[string]string

	// FprimeRoot resolves imports. Searched for when empty.
	FprimeRoot string
}

// NewConfig returns a configuration that reports everything.
func NewConfig() *Config {
	return &Config{
		Exclusions:        make(map[string]bool),
		SeverityOverrides: make(map[string]core.Severity),
		Args:              make(map[string]string),
	}
}

// IsExcluded reports whether id is excluded.
func (c *Config) IsExcluded(id string) bool {
	if c == nil {
		return false
	}
	return c.Exclusions[id]
}

// GetSeverity returns the severity for id, applying any override.
func (c *Config) GetSeverity(id string, def core.Severity) core.Severity {
	if c != nil {
		if sev, ok := c.SeverityOverrides[id]; ok {
			return sev
		}
	}
	return def
}

// Arg returns the named extra argument.
func (c *Config) Arg(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.Args[name]
	return v, ok
}

// Exclude adds ids to the exclusion list.
func (c *Config) Exclude(ids ...string) *Config {
	for _, id := range ids {
		c.Exclusions[id] = true
	}
	return c
}

// SetSeverity overrides the severity for id.
func (c *Config) SetSeverity(id string, sev core.Severity) *Config {
	c.SeverityOverrides[id] = sev
	return c
}

// SetArg sets an extra argument.
func (c *Config) SetArg(name, value string) *Config {
	c.Args[name] = value
	return c
}

// Env is what rules receive besides the file under lint.
type Env struct {
	Config *Config

	// FprimeRoot is the framework root for this file, "" when none was
	// configured or found.
	FprimeRoot string

	Resolver *topology.Resolver
	Logger   *slog.Logger
}
