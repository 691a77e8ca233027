package lint

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/source"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
	"github.com/SterlingPeet/fprime-extras/pkg/xmldoc"
)

// TagFixable marks rules whose Fix produces edits.
const TagFixable = "fixable"

// Rule is the metadata every rule provides.
type Rule interface {
	// ID returns the diagnostic identifier, e.g. "invalid-port-kind".
	ID() string

	// Description returns a one-line description.
	Description() string

	// DefaultSeverity returns the severity used when no override is configured.
	DefaultSeverity() core.Severity

	// Tags returns capability tags used to filter the registry.
	Tags() []string
}

// RawFileRule inspects the unparsed file.
type RawFileRule interface {
	Rule
	CheckRaw(ctx context.Context, env *Env, f *source.File) ([]Diagnostic, error)
}

// TreeRule inspects the parsed document.
type TreeRule interface {
	Rule
	CheckTree(ctx context.Context, env *Env, f *source.File, doc *xmldoc.Document) ([]Diagnostic, error)
}

// ModelRule inspects the linked topology model.
type ModelRule interface {
	Rule
	CheckModel(ctx context.Context, env *Env, f *source.File, doc *xmldoc.Document, m *topology.Model) ([]Diagnostic, error)
}

// Fixer produces source edits that repair what the rule reports.
type Fixer interface {
	Fix(ctx context.Context, env *Env, f *source.File, doc *xmldoc.Document) ([]xmldoc.Edit, error)
}

// Resetter clears per-file state. Called before each file.
type Resetter interface {
	Reset()
}

// ArgSpec names an extra argument a rule needs from configuration.
type ArgSpec struct {
	Name string
	Help string
}

// ArgsProvider is implemented by rules that read extra arguments.
type ArgsProvider interface {
	ExtraArgs() []ArgSpec
}

// FileTypeClassifier reports whether the pipeline can lint path.
type FileTypeClassifier func(path string) bool

// XMLClassifier accepts files with an .xml extension.
func XMLClassifier(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xml")
}

// BaseRule carries rule metadata and the no-op Fix and Reset.
// Embed it and add one of the Check methods.
type BaseRule struct {
	Name     string
	Desc     string
	Severity core.Severity
	Labels   []string
}

// ID implements Rule.
func (b *BaseRule) ID() string { return b.Name }

// Description implements Rule.
func (b *BaseRule) Description() string { return b.Desc }

// DefaultSeverity implements Rule.
func (b *BaseRule) DefaultSeverity() core.Severity { return b.Severity }

// Tags implements Rule.
func (b *BaseRule) Tags() []string { return b.Labels }

// Fix implements Fixer with no edits.
func (b *BaseRule) Fix(context.Context, *Env, *source.File, *xmldoc.Document) ([]xmldoc.Edit, error) {
	return nil, nil
}

// Reset implements Resetter and does nothing.
func (b *BaseRule) Reset() {}

// Diag builds a diagnostic for this rule at the default severity.
func (b *BaseRule) Diag(f *source.File, line, col int, msg string) Diagnostic {
	d := Diagnostic{RuleID: b.Name, Line: line, Column: col, Message: msg, Severity: b.Severity}
	if f != nil {
		d.File = f.Name()
	}
	return d
}

// StageOf returns the stage a rule runs at.
func StageOf(r Rule) core.Stage {
	switch r.(type) {
	case RawFileRule:
		return core.StageRaw
	case TreeRule:
		return core.StageTree
	case ModelRule:
		return core.StageModel
	default:
		return ""
	}
}

// Info extracts a rule's metadata for listings.
func Info(r Rule) core.RuleInfo {
	info := core.RuleInfo{
		ID:              r.ID(),
		Description:     r.Description(),
		DefaultSeverity: r.DefaultSeverity(),
		Stage:           StageOf(r),
		Tags:            r.Tags(),
		Fixable:         slices.Contains(r.Tags(), TagFixable),
	}
	if ap, ok := r.(ArgsProvider); ok {
		for _, a := range ap.ExtraArgs() {
			info.ExtraArgs = append(info.ExtraArgs, a.Name)
		}
	}
	return info
}
