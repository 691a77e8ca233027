package check

import (
	"context"
	"testing"

	"github.com/SterlingPeet/fprime-extras/internal/testutil"
	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCheck struct {
	name  string
	ids   map[string]core.Severity
	args  []ArgSpec
	probs []Problem
	err   error
	panic bool
	runs  int
}

func (f *fakeCheck) Name() string                          { return f.name }
func (f *fakeCheck) Identifiers() map[string]core.Severity { return f.ids }
func (f *fakeCheck) ExtraArgs() []ArgSpec                  { return f.args }

func (f *fakeCheck) Run(_ context.Context, res *Result, _ *topology.Model, _ map[string]string) error {
	f.runs++
	if f.panic {
		panic("boom")
	}
	for _, p := range f.probs {
		res.Add(p)
	}
	return f.err
}

func ids(names ...string) map[string]core.Severity {
	out := make(map[string]core.Severity)
	for _, n := range names {
		out[n] = core.SeverityError
	}
	return out
}

func TestProblemDescription(t *testing.T) {
	assert.Equal(t, "Top.D.portX:2 has colliding inputs", Problem{Module: "Top.D.portX:2", Message: "has colliding inputs"}.Description())
	assert.Equal(t, "bare", Problem{Message: "bare"}.Description())
}

func TestFilteredProblems(t *testing.T) {
	res := NewResult()
	res.AddProblem("a", "m1", "Top.rateGroup1.PingSend:0")
	res.AddProblem("b", "m2", "Top.cmdDisp.CmdReg:3")
	res.AddProblem("c", "m3", "Top.cmdDisp.CmdStatus:0")

	tests := []struct {
		name    string
		filters []string
		want    []string
	}{
		{"none", nil, []string{"a", "b", "c"}},
		{"by identifier", []string{"b"}, []string{"a", "c"}},
		{"by module glob", []string{"Top/cmdDisp/**"}, []string{"a"}},
		{"by exact module", []string{"Top.rateGroup1.PingSend:0"}, []string{"b", "c"}},
		{"by port glob", []string{"**/Cmd*:0"}, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range res.FilteredProblems(tt.filters) {
				got = append(got, p.Identifier)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistryDuplicateRunsOnce(t *testing.T) {
	reg := NewRegistry(testutil.NewTestLogger(t))
	c := &fakeCheck{name: "dup", ids: ids("x")}
	assert.True(t, reg.Register(c))
	assert.False(t, reg.Register(c))

	NewRunner(reg, nil).Run(context.Background(), &topology.Model{}, Options{})
	assert.Equal(t, 1, c.runs)
}

func TestCheckersExclusion(t *testing.T) {
	reg := NewRegistry(nil)
	single := &fakeCheck{name: "single", ids: ids("a")}
	multi := &fakeCheck{name: "multi", ids: ids("b", "c")}
	reg.Register(single)
	reg.Register(multi)

	excluded := func(id string) bool { return id == "a" || id == "b" }
	got := reg.Checkers(excluded)
	require.Len(t, got, 1)
	assert.Equal(t, "multi", got[0].Name())
}

func TestRunner(t *testing.T) {
	reg := NewRegistry(nil)
	good := &fakeCheck{name: "good", ids: ids("a", "b"), probs: []Problem{
		{Identifier: "a", Module: "Top.x.p:0"},
		{Identifier: "b", Module: "Top.y.p:0"},
		{Identifier: "undeclared", Module: "Top.z.p:0"},
	}}
	needsArg := &fakeCheck{name: "needs-arg", ids: ids("c"), args: []ArgSpec{{Name: "port-ignore"}}}
	panicky := &fakeCheck{name: "panicky", ids: ids("d"), panic: true}
	after := &fakeCheck{name: "after", ids: ids("e"), probs: []Problem{{Identifier: "e"}}}
	for _, c := range []Check{good, needsArg, panicky, after} {
		reg.Register(c)
	}

	out := NewRunner(reg, testutil.NewTestLogger(t)).Run(context.Background(), &topology.Model{}, Options{
		Excluded: func(id string) bool { return id == "b" },
	})

	assert.Zero(t, needsArg.runs)
	assert.Equal(t, []string{"needs-arg"}, out.Skipped)
	assert.Equal(t, []string{"panicky"}, out.Failed)
	assert.False(t, out.AllClear())
	assert.Equal(t, 1, after.runs)

	var got []string
	for _, p := range out.Problems {
		got = append(got, p.Identifier)
	}
	assert.Equal(t, []string{"a", "e"}, got)
}

func TestRunnerSuppliesArgs(t *testing.T) {
	reg := NewRegistry(nil)
	c := &fakeCheck{name: "needs-arg", ids: ids("c"), args: []ArgSpec{{Name: "port-ignore"}}}
	reg.Register(c)

	out := NewRunner(reg, nil).Run(context.Background(), &topology.Model{}, Options{Args: map[string]string{"port-ignore": "*"}})
	assert.Equal(t, 1, c.runs)
	assert.Empty(t, out.Skipped)
	assert.True(t, out.AllClear())
}

func TestValidateIdentifiers(t *testing.T) {
	known := func(id string) bool { return id == "array-port-collision" }
	assert.NoError(t, ValidateIdentifiers([]string{"array-port-collision"}, known))

	err := ValidateIdentifiers([]string{"zeta", "array-port-collision", "alpha", "zeta"}, known)
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"alpha", "zeta"}, ce.Unknown)
	assert.Contains(t, err.Error(), "alpha, zeta")
}

func TestRegistryInfos(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(&fakeCheck{name: "pair", ids: ids("b", "a"), args: []ArgSpec{{Name: "x"}}})

	infos := reg.Infos()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].ID)
	assert.Equal(t, "pair", infos[0].Check)
	assert.Equal(t, core.StageModel, infos[0].Stage)
	assert.Equal(t, []string{"x"}, infos[1].ExtraArgs)
	assert.Len(t, reg.AllIdentifiers(), 2)

	owner, ok := reg.Owner("b")
	require.True(t, ok)
	assert.Equal(t, "pair", owner.Name())
}
