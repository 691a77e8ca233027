package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/SterlingPeet/fprime-extras/pkg/check"
	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
)

// DuplicateSourceConnection reports output port positions used as the
// source of more than one connection. The model keeps only the first.
type DuplicateSourceConnection struct{}

// Name implements check.Check.
func (*DuplicateSourceConnection) Name() string { return IDDuplicateSourceConnection }

// Description is shown by the rules listing.
func (*DuplicateSourceConnection) Description() string {
	return "An output port index is the source of several connections"
}

// Identifiers implements check.Check.
func (*DuplicateSourceConnection) Identifiers() map[string]core.Severity {
	return map[string]core.Severity{IDDuplicateSourceConnection: core.SeverityError}
}

// ExtraArgs implements check.Check.
func (*DuplicateSourceConnection) ExtraArgs() []check.ArgSpec { return nil }

// Run implements check.Check.
func (*DuplicateSourceConnection) Run(_ context.Context, res *check.Result, m *topology.Model, _ map[string]string) error {
	type group struct {
		conns []*topology.Connection
	}
	var order []string
	groups := make(map[string]*group)

	for _, conn := range m.Connections {
		key := m.Identifier(conn.Source.Component, conn.Source.Port, conn.Source.Number)
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		g.conns = append(g.conns, conn)
	}

	for _, key := range order {
		g := groups[key]
		if len(g.conns) < 2 {
			continue
		}
		targets := make([]string, 0, len(g.conns))
		for _, c := range g.conns {
			targets = append(targets, c.Target.String())
		}
		res.Add(check.Problem{
			Identifier: IDDuplicateSourceConnection,
			Message:    fmt.Sprintf("is the source of %d connections (%s)", len(g.conns), strings.Join(targets, ", ")),
			Module:     key,
			Line:       g.conns[1].Source.Line,
		})
	}
	return nil
}
