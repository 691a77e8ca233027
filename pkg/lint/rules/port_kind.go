package rules

import (
	"context"
	"fmt"

	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/lint"
	"github.com/SterlingPeet/fprime-extras/pkg/source"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
	"github.com/SterlingPeet/fprime-extras/pkg/xmldoc"
)

// InvalidPortKind reports component ports whose kind is not one of the
// four the framework accepts.
type InvalidPortKind struct {
	lint.BaseRule
}

// NewInvalidPortKind creates the rule.
func NewInvalidPortKind() *InvalidPortKind {
	return &InvalidPortKind{lint.BaseRule{
		Name:     IDInvalidPortKind,
		Desc:     "Port kinds must be output, sync_input, async_input or guarded_input",
		Severity: core.SeverityCritical,
		Labels:   []string{TagComponent},
	}}
}

// CheckTree implements lint.TreeRule.
func (r *InvalidPortKind) CheckTree(_ context.Context, _ *lint.Env, f *source.File, doc *xmldoc.Document) ([]lint.Diagnostic, error) {
	var diags []lint.Diagnostic
	for _, port := range componentPorts(doc) {
		kind := port.AttrOr("kind", "")
		if _, ok := topology.ParsePortKind(kind); ok {
			continue
		}
		msg := fmt.Sprintf("Port %q specifies invalid kind %q, must be one of %s",
			port.AttrOr("name", ""), kind, topology.ValidPortKindsString())
		diags = append(diags, r.Diag(f, port.Line, 0, msg))
	}
	return diags, nil
}

// componentPorts returns the port elements of a component document.
func componentPorts(doc *xmldoc.Document) []*xmldoc.Node {
	if doc.RootName() != topology.RootComponent {
		return nil
	}
	var ports []*xmldoc.Node
	for _, section := range doc.Root.ChildrenByTag(topology.TagPorts) {
		ports = append(ports, section.ChildrenByTag(topology.TagPort)...)
	}
	return ports
}
