package lint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/SterlingPeet/fprime-extras/internal/testutil"
	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/source"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
	"github.com/SterlingPeet/fprime-extras/pkg/xmldoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawRule struct {
	BaseRule
	diags []Diagnostic
	err   error
	panic bool
	calls int
}

func (r *rawRule) CheckRaw(context.Context, *Env, *source.File) ([]Diagnostic, error) {
	r.calls++
	if r.panic {
		panic("boom")
	}
	return r.diags, r.err
}

type treeRule struct {
	BaseRule
	diags  []Diagnostic
	fix    func(data []byte, doc *xmldoc.Document) []xmldoc.Edit
	calls  int
	resets int
}

func (r *treeRule) CheckTree(context.Context, *Env, *source.File, *xmldoc.Document) ([]Diagnostic, error) {
	r.calls++
	return r.diags, nil
}

func (r *treeRule) Fix(_ context.Context, _ *Env, f *source.File, doc *xmldoc.Document) ([]xmldoc.Edit, error) {
	if r.fix == nil {
		return nil, nil
	}
	return r.fix(f.Bytes(), doc), nil
}

func (r *treeRule) Reset() { r.resets++ }

type modelRule struct {
	BaseRule
	diags []Diagnostic
	calls int
}

func (r *modelRule) CheckModel(context.Context, *Env, *source.File, *xmldoc.Document, *topology.Model) ([]Diagnostic, error) {
	r.calls++
	return r.diags, nil
}

func base(id string, sev core.Severity) BaseRule {
	return BaseRule{Name: id, Desc: id, Severity: sev}
}

func newTestPipeline(t *testing.T, cfg *Config, rules []Rule, opts ...Option) *Pipeline {
	t.Helper()
	reg := NewRegistry(testutil.NewTestLogger(t))
	for _, r := range rules {
		reg.Register(r)
	}
	hooks := DefaultHooks()
	require.NoError(t, Bind(hooks, reg))
	opts = append([]Option{WithLogger(testutil.NewTestLogger(t)), WithFprimeRoot(t.TempDir())}, opts...)
	return NewPipeline(hooks, cfg, opts...)
}

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

const simpleTopology = `<assembly name="T">
  <instance name="A" type="X"/>
  <instance name="B" type="Y"/>
  <connection name="c">
    <source component="A" port="out" num="0"/>
    <target component="B" port="in" num="0"/>
  </connection>
</assembly>
`

func TestPipelineCriticalRawHaltsLaterStages(t *testing.T) {
	raw := &rawRule{BaseRule: base("raw-critical", core.SeverityCritical)}
	raw.diags = []Diagnostic{raw.Diag(nil, 1, 1, "bad bytes")}
	tree := &treeRule{BaseRule: base("tree", core.SeverityError)}
	model := &modelRule{BaseRule: base("model", core.SeverityError)}

	parses, builds := 0, 0
	p := newTestPipeline(t, nil, []Rule{raw, tree, model},
		WithParser(func(data []byte) (*xmldoc.Document, error) {
			parses++
			return xmldoc.Parse(data)
		}),
		WithModelBuilder(func(ctx context.Context, doc *xmldoc.Document, opts topology.BuildOptions) (*topology.Model, error) {
			builds++
			return topology.Build(ctx, doc, opts)
		}),
	)

	path := writeFile(t, "Top.xml", simpleTopology)
	res, err := p.Run(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, res.Halted)
	assert.Equal(t, core.StageRaw, res.HaltedAt)
	assert.Zero(t, parses, "document must not be parsed")
	assert.Zero(t, builds, "model must not be built")
	assert.Zero(t, tree.calls)
	assert.Zero(t, model.calls)
	assert.Nil(t, res.Model)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, path, res.Diagnostics[0].File)
}

func TestPipelineCriticalTreeRunsAllTreeRules(t *testing.T) {
	first := &treeRule{BaseRule: base("first", core.SeverityCritical)}
	first.diags = []Diagnostic{first.Diag(nil, 3, 0, "critical")}
	second := &treeRule{BaseRule: base("second", core.SeverityWarning)}
	second.diags = []Diagnostic{second.Diag(nil, 2, 0, "warning")}
	model := &modelRule{BaseRule: base("model", core.SeverityError)}

	p := newTestPipeline(t, nil, []Rule{first, second, model})
	res, err := p.Run(context.Background(), writeFile(t, "Top.xml", simpleTopology))
	require.NoError(t, err)

	assert.Equal(t, 1, second.calls)
	assert.Zero(t, model.calls)
	assert.Equal(t, core.StageTree, res.HaltedAt)
	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, "second", res.Diagnostics[0].RuleID, "sorted by line")
}

func TestPipelineRunsAllStages(t *testing.T) {
	raw := &rawRule{BaseRule: base("raw", core.SeverityWarning)}
	tree := &treeRule{BaseRule: base("tree", core.SeverityWarning)}
	model := &modelRule{BaseRule: base("model", core.SeverityError)}
	model.diags = []Diagnostic{model.Diag(nil, 4, 0, "found")}

	p := newTestPipeline(t, nil, []Rule{raw, tree, model})
	res, err := p.Run(context.Background(), writeFile(t, "Top.xml", simpleTopology))
	require.NoError(t, err)

	assert.False(t, res.Halted)
	assert.Equal(t, 1, raw.calls)
	assert.Equal(t, 1, tree.calls)
	assert.Equal(t, 1, model.calls)
	assert.Equal(t, 1, tree.resets)
	require.NotNil(t, res.Model)
	assert.Equal(t, "T", res.Model.Name)
	assert.Equal(t, 1, ExitCode([]*Result{res}))
}

func TestPipelineParseFailure(t *testing.T) {
	tree := &treeRule{BaseRule: base("tree", core.SeverityWarning)}
	p := newTestPipeline(t, nil, []Rule{tree})

	res, err := p.Run(context.Background(), writeFile(t, "Bad.xml", "<assembly>\n  <instance>\n</assembly>\n"))
	require.NoError(t, err)

	assert.Equal(t, core.StageParse, res.HaltedAt)
	assert.Zero(t, tree.calls)
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, RuleDocumentNotValid, d.RuleID)
	assert.Equal(t, core.SeverityCritical, d.Severity)
	assert.Equal(t, 3, d.Line)
}

func TestPipelineExclusionsAndOverrides(t *testing.T) {
	noisy := &treeRule{BaseRule: base("noisy", core.SeverityError)}
	noisy.diags = []Diagnostic{noisy.Diag(nil, 1, 0, "x")}
	multi := &modelRule{BaseRule: base("multi", core.SeverityError)}
	multi.diags = []Diagnostic{
		{RuleID: "kept", Line: 1, Severity: core.SeverityError},
		{RuleID: "dropped", Line: 2, Severity: core.SeverityError},
	}

	cfg := NewConfig().Exclude("noisy", "dropped").SetSeverity("kept", core.SeverityWarning)
	p := newTestPipeline(t, cfg, []Rule{noisy, multi})
	res, err := p.Run(context.Background(), writeFile(t, "Top.xml", simpleTopology))
	require.NoError(t, err)

	assert.Zero(t, noisy.calls, "excluded rule does not run")
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "kept", res.Diagnostics[0].RuleID)
	assert.Equal(t, core.SeverityWarning, res.Diagnostics[0].Severity)
}

func TestPipelineRuleFailuresAreContained(t *testing.T) {
	panicky := &rawRule{BaseRule: base("panicky", core.SeverityError), panic: true}
	failing := &rawRule{BaseRule: base("failing", core.SeverityError), err: errors.New("nope")}
	after := &treeRule{BaseRule: base("after", core.SeverityWarning)}

	p := newTestPipeline(t, nil, []Rule{panicky, failing, after})
	res, err := p.Run(context.Background(), writeFile(t, "Top.xml", simpleTopology))
	require.NoError(t, err)

	assert.True(t, res.Failed)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, after.calls)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, 1, ExitCode([]*Result{res}))
}

func TestPipelineInconsistentModelSkipsModelRules(t *testing.T) {
	model := &modelRule{BaseRule: base("model", core.SeverityError)}
	p := newTestPipeline(t, nil, []Rule{model})

	src := `<assembly name="T">
  <instance name="A" type="X"/>
  <instance name="A" type="X"/>
</assembly>`
	res, err := p.Run(context.Background(), writeFile(t, "Top.xml", src))
	require.NoError(t, err)

	var ie *topology.InconsistencyError
	assert.ErrorAs(t, res.ModelErr, &ie)
	assert.Zero(t, model.calls)
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, RuleInconsistentTopology, d.RuleID)
	assert.Equal(t, core.SeverityError, d.Severity)
	assert.Equal(t, 3, d.Line)
	assert.Contains(t, d.Message, `duplicate component name "A"`)
	assert.False(t, res.Clean())
	assert.Equal(t, 1, ExitCode([]*Result{res}))
}

func TestPipelineInconsistentModelExclusionAndOverride(t *testing.T) {
	src := `<assembly name="T">
  <instance name="A" type="X"/>
  <instance name="A" type="X"/>
</assembly>`

	t.Run("excluded", func(t *testing.T) {
		p := newTestPipeline(t, NewConfig().Exclude(RuleInconsistentTopology), nil)
		res, err := p.Run(context.Background(), writeFile(t, "Top.xml", src))
		require.NoError(t, err)
		assert.NotNil(t, res.ModelErr)
		assert.Empty(t, res.Diagnostics)
	})

	t.Run("severity override", func(t *testing.T) {
		p := newTestPipeline(t, NewConfig().SetSeverity(RuleInconsistentTopology, core.SeverityWarning), nil)
		res, err := p.Run(context.Background(), writeFile(t, "Top.xml", src))
		require.NoError(t, err)
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, core.SeverityWarning, res.Diagnostics[0].Severity)
	})
}

func TestPipelineInconsistencyOnReportedLineIsNotRepeated(t *testing.T) {
	flagged := &treeRule{BaseRule: base("flagged", core.SeverityError)}
	flagged.diags = []Diagnostic{flagged.Diag(nil, 3, 0, "already seen")}
	p := newTestPipeline(t, nil, []Rule{flagged})

	src := `<assembly name="T">
  <instance name="A" type="X"/>
  <instance name="A" type="X"/>
</assembly>`
	res, err := p.Run(context.Background(), writeFile(t, "Top.xml", src))
	require.NoError(t, err)

	assert.NotNil(t, res.ModelErr)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "flagged", res.Diagnostics[0].RuleID)
}

func TestPipelineUnsupportedFileType(t *testing.T) {
	p := newTestPipeline(t, nil, nil)
	_, err := p.Run(context.Background(), writeFile(t, "notes.txt", "hello"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestPipelineFix(t *testing.T) {
	remover := &treeRule{BaseRule: base("remover", core.SeverityError)}
	remover.diags = []Diagnostic{remover.Diag(nil, 3, 0, "B is unwanted")}
	remover.fix = func(data []byte, doc *xmldoc.Document) []xmldoc.Edit {
		for _, n := range doc.Find("instance") {
			if n.AttrOr("name", "") == "B" {
				return []xmldoc.Edit{xmldoc.RemoveNode(data, n)}
			}
		}
		return nil
	}

	path := writeFile(t, "Top.xml", simpleTopology)
	p := newTestPipeline(t, nil, []Rule{remover}, WithFix(true))
	res, err := p.Run(context.Background(), path)
	require.NoError(t, err)
	require.True(t, res.Fixed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `name="B"`)

	backup, err := os.ReadFile(res.File.BackupPath())
	require.NoError(t, err)
	assert.Equal(t, simpleTopology, string(backup))
}

func TestRunAllKeepsInputOrder(t *testing.T) {
	p := newTestPipeline(t, nil, nil)

	var paths []string
	for _, name := range []string{"a.xml", "b.xml", "c.xml", "d.xml"} {
		paths = append(paths, writeFile(t, name, simpleTopology))
	}
	results, err := p.RunAll(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
	}
	assert.Equal(t, 0, ExitCode(results))
}

func TestRunAllStopsOnFatal(t *testing.T) {
	p := newTestPipeline(t, nil, nil)
	paths := []string{writeFile(t, "a.xml", simpleTopology), filepath.Join(t.TempDir(), "missing.xml")}
	_, err := p.RunAll(context.Background(), paths, 1)
	assert.Error(t, err)
}
