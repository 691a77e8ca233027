package rules

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/lint"
	"github.com/SterlingPeet/fprime-extras/pkg/source"
	"github.com/SterlingPeet/fprime-extras/pkg/xmldoc"
)

// xmlModelTarget is the processing instruction that associates a
// document with its RelaxNG schema.
const xmlModelTarget = "xml-model"

// SchemaReference warns about xml-model processing instructions whose
// href names a schema that cannot be found. The href is tried relative
// to the document and then to the framework root.
type SchemaReference struct {
	lint.BaseRule
}

// NewSchemaReference creates the rule.
func NewSchemaReference() *SchemaReference {
	return &SchemaReference{lint.BaseRule{
		Name:     IDInvalidSchemaReference,
		Desc:     "xml-model schema references must point to an existing file",
		Severity: core.SeverityWarning,
		Labels:   []string{TagXML},
	}}
}

// CheckTree implements lint.TreeRule.
func (r *SchemaReference) CheckTree(_ context.Context, env *lint.Env, f *source.File, doc *xmldoc.Document) ([]lint.Diagnostic, error) {
	var diags []lint.Diagnostic
	for _, pi := range doc.ProcInstsByTarget(xmlModelTarget) {
		href, ok := pi.PseudoAttrs()["href"]
		if !ok || href == "" {
			diags = append(diags, r.Diag(f, pi.Line, pi.Column, "xml-model processing instruction has no href"))
			continue
		}
		if schemaExists(href, f.Dir(), env.FprimeRoot) {
			continue
		}
		diags = append(diags, r.Diag(f, pi.Line, pi.Column, fmt.Sprintf("Schema %q referenced by xml-model does not exist", href)))
	}
	return diags, nil
}

func schemaExists(href string, dirs ...string) bool {
	href = filepath.FromSlash(href)
	if filepath.IsAbs(href) {
		return fileExists(href)
	}
	for _, dir := range dirs {
		if dir != "" && fileExists(filepath.Join(dir, href)) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
