package lint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/source"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
	"github.com/SterlingPeet/fprime-extras/pkg/xmldoc"
)

// Identifiers reported by the pipeline itself.
const (
	// RuleDocumentNotValid is reported when the document is not well formed.
	RuleDocumentNotValid = "xml-document-not-valid"

	// RuleInconsistentTopology is reported when a well-formed document
	// cannot be linked into a topology model.
	RuleInconsistentTopology = "inconsistent-topology"
)

// PipelineInfos describes the identifiers the pipeline reports without a
// registered rule. They are configured like any rule identifier.
func PipelineInfos() []core.RuleInfo {
	return []core.RuleInfo{{
		ID:              RuleInconsistentTopology,
		Description:     "The document must link into a consistent topology model. Duplicate instance names and connections to unknown components or ports stop the model stage.",
		DefaultSeverity: core.SeverityError,
		Stage:           core.StageModel,
		Tags:            []string{"topology"},
	}}
}

// ErrUnsupportedFileType is returned for files no classifier accepts.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ParseFunc parses raw document bytes.
type ParseFunc func(data []byte) (*xmldoc.Document, error)

// BuildFunc links a parsed document into a topology model.
type BuildFunc func(ctx context.Context, doc *xmldoc.Document, opts topology.BuildOptions) (*topology.Model, error)

// Result is the outcome of linting one file.
type Result struct {
	Path        string
	File        *source.File
	FprimeRoot  string
	Diagnostics []Diagnostic

	// Document and Model are nil when the run halted before building them.
	Document *xmldoc.Document
	Model    *topology.Model

	// ModelErr is set when the model could not be linked. Model rules are
	// skipped in that case and the failure is reported as
	// RuleInconsistentTopology.
	ModelErr error

	// Halted is set when a CRITICAL diagnostic stopped the run at HaltedAt.
	Halted   bool
	HaltedAt core.Stage

	// Failed is set when a rule returned an error or panicked.
	Failed bool

	// Fixed is set when fixes were written back to the file.
	Fixed bool
}

// Clean reports whether the run produced no diagnostics and no rule failed.
func (r *Result) Clean() bool {
	return len(r.Diagnostics) == 0 && !r.Failed
}

// Pipeline lints files with the rules bound to a Hooks table. A Pipeline
// holds no per-file state and can lint files concurrently.
type Pipeline struct {
	hooks      *Hooks
	config     *Config
	resolver   *topology.Resolver
	logger     *slog.Logger
	parse      ParseFunc
	build      BuildFunc
	fix        bool
	fprimeRoot string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithResolver shares an import resolver, and its cache, across pipelines.
func WithResolver(r *topology.Resolver) Option {
	return func(p *Pipeline) { p.resolver = r }
}

// WithParser replaces the document parser.
func WithParser(fn ParseFunc) Option {
	return func(p *Pipeline) { p.parse = fn }
}

// WithModelBuilder replaces the topology model builder.
func WithModelBuilder(fn BuildFunc) Option {
	return func(p *Pipeline) { p.build = fn }
}

// WithFix makes the pipeline apply rule fixes and write the file back.
func WithFix(fix bool) Option {
	return func(p *Pipeline) { p.fix = fix }
}

// WithFprimeRoot sets the framework root, overriding Config.FprimeRoot
// and discovery.
func WithFprimeRoot(root string) Option {
	return func(p *Pipeline) { p.fprimeRoot = root }
}

// NewPipeline creates a pipeline over the given hooks.
func NewPipeline(hooks *Hooks, cfg *Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = NewConfig()
	}
	p := &Pipeline{
		hooks:  hooks,
		config: cfg,
		parse:  xmldoc.Parse,
		build:  topology.Build,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.resolver == nil {
		p.resolver = topology.NewResolver(p.logger)
	}
	return p
}

// Run lints the file at path.
//
// Unsupported and unreadable files return an error and no result. All
// other problems, including rules that fail, are recorded on the Result.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	if err := p.classify(path); err != nil {
		return nil, err
	}
	f, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	return p.RunFile(ctx, f)
}

// RunFile lints an already opened file.
func (p *Pipeline) RunFile(ctx context.Context, f *source.File) (*Result, error) {
	res := &Result{Path: f.FullName(), File: f}
	res.FprimeRoot = p.rootFor(f)
	env := &Env{
		Config:     p.config,
		FprimeRoot: res.FprimeRoot,
		Resolver:   p.resolver,
		Logger:     p.logger.With(slog.String("file", f.Name())),
	}

	raw, err := Invoke[RawFileRule](p.hooks, PointRawFileRules)
	if err != nil {
		return nil, err
	}
	tree, err := Invoke[TreeRule](p.hooks, PointDocumentModelRules)
	if err != nil {
		return nil, err
	}
	model, err := Invoke[ModelRule](p.hooks, PointFprimeModelRules)
	if err != nil {
		return nil, err
	}
	p.reset(env, raw, tree, model)

	defer func() { SortDiagnostics(res.Diagnostics) }()

	// Raw stage.
	for _, rule := range dedupe(raw) {
		p.runRule(env, res, rule, func() ([]Diagnostic, error) {
			return rule.CheckRaw(ctx, env, f)
		})
	}
	if p.halt(res, core.StageRaw) {
		return res, nil
	}

	// Parse.
	doc, err := p.parse(f.Bytes())
	if err != nil {
		env.Logger.Error("document is not well formed", slog.Any("error", err))
		if !p.config.IsExcluded(RuleDocumentNotValid) {
			d := Diagnostic{File: f.Name(), RuleID: RuleDocumentNotValid, Message: err.Error(), Severity: core.SeverityCritical}
			var se *xmldoc.SyntaxError
			if errors.As(err, &se) {
				d.Line, d.Column, d.Message = se.Line, se.Column, se.Message
			}
			d.Severity = p.config.GetSeverity(d.RuleID, d.Severity)
			res.Diagnostics = append(res.Diagnostics, d)
		}
		res.Halted, res.HaltedAt = true, core.StageParse
		return res, nil
	}
	res.Document = doc

	// Tree stage. Every tree rule runs even after a CRITICAL finding.
	for _, rule := range dedupe(tree) {
		p.runRule(env, res, rule, func() ([]Diagnostic, error) {
			return rule.CheckTree(ctx, env, f, doc)
		})
	}
	halted := p.halt(res, core.StageTree)

	if p.fix {
		p.applyFixes(ctx, env, res, raw, tree, model)
	}
	if halted {
		return res, nil
	}

	// Model stage.
	if err := ctx.Err(); err != nil {
		return res, err
	}
	m, err := p.build(ctx, doc, topology.BuildOptions{
		Path:       f.FullName(),
		FprimeRoot: res.FprimeRoot,
		Resolver:   p.resolver,
		Logger:     env.Logger,
	})
	if err != nil {
		var ie *topology.InconsistencyError
		if !errors.As(err, &ie) {
			return res, fmt.Errorf("building model for %s: %w", f.Name(), err)
		}
		env.Logger.Warn("model is inconsistent, skipping model rules", slog.Any("error", err))
		res.ModelErr = err
		p.reportInconsistency(res, ie)
		return res, nil
	}
	res.Model = m

	for _, rule := range dedupe(model) {
		p.runRule(env, res, rule, func() ([]Diagnostic, error) {
			return rule.CheckModel(ctx, env, f, doc, m)
		})
	}
	p.halt(res, core.StageModel)
	return res, nil
}

func (p *Pipeline) classify(path string) error {
	classifiers, err := Invoke[FileTypeClassifier](p.hooks, PointFileTypeCheck)
	if err != nil {
		return err
	}
	for _, accept := range classifiers {
		if accept(path) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFileType, path)
}

// rootFor picks the framework root for f. A configured root that does
// not exist is ignored in favor of searching upward from the file.
func (p *Pipeline) rootFor(f *source.File) string {
	for _, root := range []string{p.fprimeRoot, p.config.FprimeRoot} {
		if root == "" {
			continue
		}
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			return root
		}
		p.logger.Info("configured F Prime root does not exist, searching instead", slog.String("root", root))
	}
	if root, ok := topology.FindRoot(f.Dir()); ok {
		return root
	}
	return ""
}

// runRule runs one rule, recording its diagnostics. Errors and panics mark
// the result failed and never stop the other rules.
func (p *Pipeline) runRule(env *Env, res *Result, rule Rule, check func() ([]Diagnostic, error)) {
	if p.config.IsExcluded(rule.ID()) {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			env.Logger.Error("rule panicked", slog.String("rule", rule.ID()), slog.Any("panic", r))
			res.Failed = true
		}
	}()

	diags, err := check()
	if err != nil {
		env.Logger.Error("rule failed", slog.String("rule", rule.ID()), slog.Any("error", err))
		res.Failed = true
	}
	for _, d := range diags {
		if d.RuleID == "" {
			d.RuleID = rule.ID()
		}
		if p.config.IsExcluded(d.RuleID) {
			continue
		}
		if d.File == "" {
			d.File = res.File.Name()
		}
		d.Severity = p.config.GetSeverity(d.RuleID, d.Severity)
		res.Diagnostics = append(res.Diagnostics, d)
	}
}

// reportInconsistency records a model build failure as a diagnostic. It is
// skipped when an earlier stage already reported a problem on the same
// line, as a dangling connection does.
func (p *Pipeline) reportInconsistency(res *Result, ie *topology.InconsistencyError) {
	if p.config.IsExcluded(RuleInconsistentTopology) {
		return
	}
	for _, d := range res.Diagnostics {
		if ie.Line > 0 && d.Line == ie.Line {
			return
		}
	}
	res.Diagnostics = append(res.Diagnostics, Diagnostic{
		File:     res.File.Name(),
		Line:     ie.Line,
		RuleID:   RuleInconsistentTopology,
		Message:  ie.Reason,
		Severity: p.config.GetSeverity(RuleInconsistentTopology, core.SeverityError),
	})
}

func (p *Pipeline) halt(res *Result, stage core.Stage) bool {
	if HasCritical(res.Diagnostics) {
		res.Halted, res.HaltedAt = true, stage
		return true
	}
	return false
}

func (p *Pipeline) reset(env *Env, stages ...any) {
	for _, rules := range stages {
		for _, r := range asRules(rules) {
			rs, ok := r.(Resetter)
			if !ok {
				continue
			}
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						env.Logger.Error("rule reset panicked", slog.String("rule", r.ID()), slog.Any("panic", rec))
					}
				}()
				rs.Reset()
			}()
		}
	}
}

// applyFixes collects edits from every non-excluded Fixer and writes the
// result through the file's backup. A rule whose Fix fails is skipped.
func (p *Pipeline) applyFixes(ctx context.Context, env *Env, res *Result, stages ...any) {
	var edits []xmldoc.Edit
	for _, rules := range stages {
		for _, r := range asRules(rules) {
			fx, ok := r.(Fixer)
			if !ok || p.config.IsExcluded(r.ID()) {
				continue
			}
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						env.Logger.Error("rule fix panicked", slog.String("rule", r.ID()), slog.Any("panic", rec))
					}
				}()
				e, err := fx.Fix(ctx, env, res.File, res.Document)
				if err != nil {
					env.Logger.Error("rule fix failed", slog.String("rule", r.ID()), slog.Any("error", err))
					return
				}
				edits = append(edits, e...)
			}()
		}
	}
	if len(edits) == 0 {
		return
	}

	fixed, err := xmldoc.ApplyEdits(res.File.Bytes(), edits)
	if err != nil {
		env.Logger.Error("fixes could not be applied", slog.Any("error", err))
		return
	}
	if err := res.File.Write(fixed); err != nil {
		env.Logger.Error("writing fixed file", slog.Any("error", err))
		res.Failed = true
		return
	}
	env.Logger.Info("fixed file", slog.Int("edits", len(edits)), slog.String("backup", res.File.BackupPath()))
	res.Fixed = true
}

func asRules(v any) []Rule {
	var out []Rule
	switch rules := v.(type) {
	case []RawFileRule:
		for _, r := range rules {
			out = append(out, r)
		}
	case []TreeRule:
		for _, r := range rules {
			out = append(out, r)
		}
	case []ModelRule:
		for _, r := range rules {
			out = append(out, r)
		}
	}
	return out
}

// dedupe drops rules bound more than once to the same point.
func dedupe[T Rule](rules []T) []T {
	seen := make(map[string]bool, len(rules))
	out := rules[:0:0]
	for _, r := range rules {
		if seen[r.ID()] {
			continue
		}
		seen[r.ID()] = true
		out = append(out, r)
	}
	return out
}
