package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/SterlingPeet/fprime-extras/pkg/check"
	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
	"github.com/bmatcuk/doublestar/v4"
)

// UnconnectedPort reports output ports of resolved instances that no
// connection uses. Ports matching a port-ignore pattern are skipped.
type UnconnectedPort struct{}

// Name implements check.Check.
func (*UnconnectedPort) Name() string { return IDUnconnectedPort }

// Description is shown by the rules listing.
func (*UnconnectedPort) Description() string {
	return "An output port of an instance has no connection"
}

// Identifiers implements check.Check.
func (*UnconnectedPort) Identifiers() map[string]core.Severity {
	return map[string]core.Severity{IDUnconnectedPort: core.SeverityWarning}
}

// ExtraArgs implements check.Check.
func (*UnconnectedPort) ExtraArgs() []check.ArgSpec {
	return []check.ArgSpec{{
		Name: ArgPortIgnore,
		Help: "comma separated patterns over component.port that may stay unconnected",
	}}
}

// Run implements check.Check.
func (*UnconnectedPort) Run(_ context.Context, res *check.Result, m *topology.Model, args map[string]string) error {
	if m.Kind != topology.DocumentTopology {
		return nil
	}
	patterns := splitPatterns(args[ArgPortIgnore])
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%s %q: %w", ArgPortIgnore, pattern, doublestar.ErrBadPattern)
		}
	}

	for _, c := range m.Components {
		if !c.Resolved() {
			continue
		}
		used := make(map[string]bool)
		for _, p := range c.Ports {
			if p.Connected() {
				used[p.Name] = true
			}
		}
		for _, p := range c.Ports {
			if p.Direction != topology.DirectionOutput || used[p.Name] || p.Number != 0 {
				continue
			}
			if ignored(patterns, c.Name+"."+p.Name) {
				continue
			}
			res.Add(check.Problem{
				Identifier: IDUnconnectedPort,
				Message:    "is not connected",
				Module:     m.StandardIdentifier(c, p),
				Line:       c.Line,
			})
		}
	}
	return nil
}

func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func ignored(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
