package rules

import (
	"context"
	"errors"

	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/lint"
	"github.com/SterlingPeet/fprime-extras/pkg/source"
	"github.com/SterlingPeet/fprime-extras/pkg/xmldoc"
)

// DocumentNotValid reports documents that are not well-formed XML.
type DocumentNotValid struct {
	lint.BaseRule
}

// NewDocumentNotValid creates the rule.
func NewDocumentNotValid() *DocumentNotValid {
	return &DocumentNotValid{lint.BaseRule{
		Name:     IDDocumentNotValid,
		Desc:     "The file must be well-formed XML",
		Severity: core.SeverityCritical,
		Labels:   []string{TagXML},
	}}
}

// CheckRaw implements lint.RawFileRule.
func (r *DocumentNotValid) CheckRaw(_ context.Context, _ *lint.Env, f *source.File) ([]lint.Diagnostic, error) {
	_, err := xmldoc.Parse(f.Bytes())
	if err == nil {
		return nil, nil
	}
	var se *xmldoc.SyntaxError
	if !errors.As(err, &se) {
		return []lint.Diagnostic{r.Diag(f, 0, 0, err.Error())}, nil
	}
	return []lint.Diagnostic{r.Diag(f, se.Line, se.Column, se.Message)}, nil
}
