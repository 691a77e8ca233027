package rules

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SterlingPeet/fprime-extras/pkg/check"
	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/lint"
	"github.com/SterlingPeet/fprime-extras/pkg/source"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
	"github.com/SterlingPeet/fprime-extras/pkg/xmldoc"
)

// TopologyChecks runs the registered topology checks over the linked
// model and turns their problems into diagnostics.
type TopologyChecks struct {
	lint.BaseRule
	checks *check.Registry
}

// NewTopologyChecks creates the rule over the checks in reg.
func NewTopologyChecks(reg *check.Registry) *TopologyChecks {
	return &TopologyChecks{
		BaseRule: lint.BaseRule{
			Name:     IDTopologyChecks,
			Desc:     "Runs the topology model checks",
			Severity: core.SeverityError,
			Labels:   []string{TagTopology},
		},
		checks: reg,
	}
}

// ExtraArgs implements lint.ArgsProvider with the union of the check arguments.
func (r *TopologyChecks) ExtraArgs() []lint.ArgSpec {
	var args []lint.ArgSpec
	seen := make(map[string]bool)
	for _, c := range r.checks.All() {
		for _, a := range c.ExtraArgs() {
			if seen[a.Name] {
				continue
			}
			seen[a.Name] = true
			args = append(args, lint.ArgSpec{Name: a.Name, Help: a.Help})
		}
	}
	return args
}

// CheckModel implements lint.ModelRule. A check that fails is reported as
// an error after the problems of the others are collected.
func (r *TopologyChecks) CheckModel(ctx context.Context, env *lint.Env, f *source.File, doc *xmldoc.Document, m *topology.Model) ([]lint.Diagnostic, error) {
	runner := check.NewRunner(r.checks, env.Logger)
	checkers := r.checks.Checkers(env.Config.IsExcluded)
	env.Logger.Info("running topology checks", slog.Int("count", len(checkers)))

	out := runner.Run(ctx, m, check.Options{
		Excluded: env.Config.IsExcluded,
		Filters:  env.Config.Filters,
		Args:     env.Config.Args,
	})

	severities := r.checks.AllIdentifiers()
	diags := make([]lint.Diagnostic, 0, len(out.Problems))
	for _, p := range out.Problems {
		line, col := p.Line, 0
		if line == 0 {
			line, col = SynthesizeLine(f, doc, p.Module)
		}
		diags = append(diags, lint.Diagnostic{
			File:     f.Name(),
			RuleID:   p.Identifier,
			Line:     line,
			Column:   col,
			Message:  p.Description(),
			Severity: severities[p.Identifier],
		})
	}

	if !out.AllClear() {
		return diags, fmt.Errorf("topology checks failed: %s", strings.Join(out.Failed, ", "))
	}
	return diags, nil
}

// SynthesizeLine maps a "<model>.<component>.<port>:<index>" identifier
// to a best-effort source line: the component's instance element, or
// better the connection endpoint naming that port and index. Anything
// that cannot be placed lands on the last line of the file.
func SynthesizeLine(f *source.File, doc *xmldoc.Document, module string) (int, int) {
	line := f.LineCount()
	parts := strings.SplitN(module, ".", 3)
	if len(parts) < 3 || doc == nil || doc.Root == nil {
		return line, 0
	}
	top, comp := parts[0], parts[1]
	port, num, _ := strings.Cut(parts[2], ":")
	if doc.Root.AttrOr("name", "") != top {
		return line, 0
	}

	for _, inst := range doc.Root.ChildrenByTag(topology.TagInstance) {
		if inst.AttrOr("name", "") == comp {
			line = inst.Line
		}
	}
	for _, conn := range doc.Root.ChildrenByTag(topology.TagConnection) {
		for _, end := range conn.Children {
			if end.AttrOr("component", "") == comp && end.AttrOr("port", "") == port && end.AttrOr("num", "0") == num {
				line = end.Line
			}
		}
	}
	return line, 0
}
