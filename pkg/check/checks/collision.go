package checks

import (
	"context"
	"fmt"

	"github.com/SterlingPeet/fprime-extras/pkg/check"
	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
)

// ArrayPortCollision reports array port slots that more than one output
// port connects to. Scalar targets are not checked.
//
// The problem is keyed on the destination slot but placed on the target
// endpoint line of the second connection into that slot, the first one
// found to collide. Later collisions on the same slot are not reported.
type ArrayPortCollision struct{}

// Name implements check.Check.
func (*ArrayPortCollision) Name() string { return IDArrayPortCollision }

// Description is shown by the rules listing.
func (*ArrayPortCollision) Description() string {
	return "Two output ports connect to the same index of an array port"
}

// Identifiers implements check.Check.
func (*ArrayPortCollision) Identifiers() map[string]core.Severity {
	return map[string]core.Severity{IDArrayPortCollision: core.SeverityError}
}

// ExtraArgs implements check.Check.
func (*ArrayPortCollision) ExtraArgs() []check.ArgSpec { return nil }

// Run implements check.Check. It makes one pass over the output ports,
// keyed by destination slot, and reports each colliding slot once.
func (*ArrayPortCollision) Run(ctx context.Context, res *check.Result, m *topology.Model, _ map[string]string) error {
	first := make(map[string]*topology.Port)
	reported := make(map[string]bool)

	for _, c := range m.Components {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, p := range c.Ports {
			if !p.Connected() || p.Direction != topology.DirectionOutput {
				continue
			}
			tc, tp := m.Peer(p)
			if tc == nil || tp == nil || !tp.IsArray() {
				continue
			}

			key := m.Identifier(tc.Name, tp.Name, p.Target.Number)
			prev, seen := first[key]
			if !seen {
				first[key] = p
				continue
			}
			if reported[key] {
				continue
			}
			reported[key] = true
			res.Add(check.Problem{
				Identifier: IDArrayPortCollision,
				Message: fmt.Sprintf("has colliding inputs from %s.%s[%d] and %s.%s[%d]",
					prev.Owner().Name, prev.Name, prev.Number, c.Name, p.Name, p.Number),
				Module: key,
				Line:   p.Target.Line,
			})
		}
	}
	return nil
}
