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

// DanglingConnections reports topology connections whose source or
// target names a component that is not instantiated. The fix removes
// those connections.
type DanglingConnections struct {
	lint.BaseRule
}

// NewDanglingConnections creates the rule.
func NewDanglingConnections() *DanglingConnections {
	return &DanglingConnections{lint.BaseRule{
		Name:     IDDanglingConnections,
		Desc:     "Connections must join instantiated components",
		Severity: core.SeverityError,
		Labels:   []string{TagTopology, lint.TagFixable},
	}}
}

type danglingSide struct {
	conn *xmldoc.Node
	side string
	name string
}

func dangling(doc *xmldoc.Document) []danglingSide {
	if doc.RootName() != topology.RootAssembly {
		return nil
	}
	instances := make(map[string]bool)
	for _, inst := range doc.Root.ChildrenByTag(topology.TagInstance) {
		instances[inst.AttrOr("name", "")] = true
	}

	var out []danglingSide
	for _, conn := range doc.Root.ChildrenByTag(topology.TagConnection) {
		for _, side := range []string{topology.TagSource, topology.TagTarget} {
			var comp string
			if n := conn.Child(side); n != nil {
				comp = n.AttrOr("component", "")
			}
			if !instances[comp] {
				out = append(out, danglingSide{conn: conn, side: side, name: comp})
			}
		}
	}
	return out
}

// CheckTree implements lint.TreeRule.
func (r *DanglingConnections) CheckTree(_ context.Context, env *lint.Env, f *source.File, doc *xmldoc.Document) ([]lint.Diagnostic, error) {
	var diags []lint.Diagnostic
	for _, d := range dangling(doc) {
		msg := fmt.Sprintf("Connection %q contains non-existent, dangling %s %q", d.conn.AttrOr("name", ""), d.side, d.name)
		env.Logger.Debug(msg)
		diags = append(diags, r.Diag(f, d.conn.Line, 0, msg))
	}
	return diags, nil
}

// Fix implements lint.Fixer.
func (r *DanglingConnections) Fix(_ context.Context, _ *lint.Env, f *source.File, doc *xmldoc.Document) ([]xmldoc.Edit, error) {
	var edits []xmldoc.Edit
	removed := make(map[*xmldoc.Node]bool)
	for _, d := range dangling(doc) {
		if removed[d.conn] {
			continue
		}
		removed[d.conn] = true
		edits = append(edits, xmldoc.RemoveNode(f.Bytes(), d.conn))
	}
	return edits, nil
}
