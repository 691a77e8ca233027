package rules

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/lint"
	"github.com/SterlingPeet/fprime-extras/pkg/source"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
	"github.com/SterlingPeet/fprime-extras/pkg/xmldoc"
)

// CyclicImport reports import chains that lead back to a document that
// is still being resolved.
type CyclicImport struct {
	lint.BaseRule
}

// NewCyclicImport creates the rule.
func NewCyclicImport() *CyclicImport {
	return &CyclicImport{lint.BaseRule{
		Name:     IDCyclicImport,
		Desc:     "Imports must not form a cycle",
		Severity: core.SeverityCritical,
		Labels:   []string{TagImports},
	}}
}

// CheckTree implements lint.TreeRule.
func (r *CyclicImport) CheckTree(ctx context.Context, env *lint.Env, f *source.File, doc *xmldoc.Document) ([]lint.Diagnostic, error) {
	if env.FprimeRoot == "" {
		return nil, nil
	}
	start := filepath.Clean(f.FullName())
	g, err := env.Resolver.ImportGraph(ctx, env.FprimeRoot, start, doc)
	if err == nil {
		return nil, nil
	}
	var ce *topology.CycleError
	if !errors.As(err, &ce) {
		return nil, err
	}

	line := 0
	if len(ce.Chain) > 1 {
		for _, e := range g.Imports(start) {
			if e.To == ce.Chain[1] {
				line = e.Line
				break
			}
		}
	}
	names := make([]string, len(ce.Chain))
	for i, p := range ce.Chain {
		names[i] = p
		if rel, err := filepath.Rel(env.FprimeRoot, p); err == nil && !strings.HasPrefix(rel, "..") {
			names[i] = filepath.ToSlash(rel)
		}
	}
	return []lint.Diagnostic{r.Diag(f, line, 0, "Import cycle: "+strings.Join(names, " -> "))}, nil
}
