package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/SterlingPeet/fprime-extras/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const danglingTopology = `<assembly name="Top">
  <instance name="A" type="X"/>
  <connection name="ghostly">
    <source component="Ghost" port="out" num="0"/>
    <target component="A" port="in" num="0"/>
  </connection>
</assembly>
`

func runCommand(t *testing.T, newCmd func() *cobra.Command, args ...string) (string, error) {
	t.Helper()
	cmd := newCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewLintCommand(t *testing.T) {
	cmd := NewLintCommand()

	assert.Equal(t, "lint <path>... [fprime_root]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Example)

	for _, flag := range []string{"fix", "print-processing-instructions", "watch", "exclude", "filter", "arg", "pattern"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestSplitRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "TopAppAi.xml")
	require.NoError(t, os.WriteFile(file, []byte("<assembly/>"), 0o644))

	tests := []struct {
		name       string
		args       []string
		wantInputs []string
		wantRoot   string
	}{
		{name: "single file", args: []string{file}, wantInputs: []string{file}},
		{name: "single directory is an input", args: []string{dir}, wantInputs: []string{dir}},
		{name: "trailing directory is the root", args: []string{file, dir}, wantInputs: []string{file}, wantRoot: dir},
		{name: "trailing file", args: []string{file, file}, wantInputs: []string{file, file}},
		{name: "trailing missing path", args: []string{file, filepath.Join(dir, "nope")}, wantInputs: []string{file, filepath.Join(dir, "nope")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs, root := splitRoot(tt.args)
			assert.Equal(t, tt.wantInputs, inputs)
			assert.Equal(t, tt.wantRoot, root)
		})
	}
}

func TestExpandInputs(t *testing.T) {
	proj := testutil.NewProject(t)
	top := proj.Write("Ref/Top/TopAppAi.xml", "<assembly/>")
	comp := proj.Write("Ref/Comp/CompComponentAi.xml", "<component/>")
	proj.Write("Ref/Comp/notes.xml", "<notes/>")

	t.Run("directory", func(t *testing.T) {
		paths, err := expandInputs([]string{filepath.Join(proj.Root, "Ref")}, []string{defaultDirPattern})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{top, comp}, paths)
	})

	t.Run("glob", func(t *testing.T) {
		paths, err := expandInputs([]string{filepath.Join(proj.Root, "Ref", "**", "*AppAi.xml")}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{top}, paths)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		paths, err := expandInputs([]string{top, top, filepath.Join(proj.Root, "Ref", "Top")}, []string{defaultDirPattern})
		require.NoError(t, err)
		assert.Equal(t, []string{top}, paths)
	})

	t.Run("missing file is kept", func(t *testing.T) {
		missing := filepath.Join(proj.Root, "Missing.xml")
		paths, err := expandInputs([]string{missing}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{missing}, paths)
	})
}

func TestLintCommandReportsDangling(t *testing.T) {
	proj := testutil.NewProject(t)
	path := proj.Write("Top/TopAppAi.xml", danglingTopology)

	out, err := runCommand(t, NewLintCommand, path)
	require.ErrorIs(t, err, ErrLintFailed)
	assert.Contains(t, out, `[FP-LINT] (L3,C0) dangling-port-connections -> Connection "ghostly" contains non-existent, dangling source "Ghost" [ERROR]`)
}

func TestLintCommandExclude(t *testing.T) {
	proj := testutil.NewProject(t)
	path := proj.Write("Top/TopAppAi.xml", danglingTopology)

	out, err := runCommand(t, NewLintCommand, "--exclude", "dangling-port-connections,inconsistent-topology", path)
	require.NoError(t, err)
	assert.Contains(t, out, "All linting checks passed.")
}

func TestLintCommandReportsInconsistentTopology(t *testing.T) {
	proj := testutil.NewProject(t)
	path := proj.Write("Top/TopAppAi.xml", `<assembly name="Top">
  <instance name="A" type="X"/>
  <instance name="A" type="X"/>
</assembly>
`)

	out, err := runCommand(t, NewLintCommand, path)
	require.ErrorIs(t, err, ErrLintFailed)
	assert.Contains(t, out, `[FP-LINT] (L3,C0) inconsistent-topology -> duplicate component name "A" [ERROR]`)
	assert.NotContains(t, out, "All linting checks passed.")
}

func TestLintCommandFix(t *testing.T) {
	proj := testutil.NewProject(t)
	path := proj.Write("Top/TopAppAi.xml", danglingTopology)

	out, err := runCommand(t, NewLintCommand, "--fix", path)
	require.ErrorIs(t, err, ErrLintFailed)
	assert.Contains(t, out, "Fixes written")

	fixed, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(fixed), "Ghost")
	assert.FileExists(t, filepath.Join(filepath.Dir(path), ".TopAppAi.xml.0.bak"))
}

func TestLintCommandMultipleFilesSummary(t *testing.T) {
	proj := testutil.NewProject(t)
	proj.Write("Top/TopAppAi.xml", danglingTopology)
	proj.Write("Other/OtherAppAi.xml", `<assembly name="Other"/>`)

	out, err := runCommand(t, NewLintCommand, proj.Root)
	require.ErrorIs(t, err, ErrLintFailed)
	assert.Contains(t, out, "Summary: 1 issues, 1 errors in 2 files")
}

func TestLintCommandRejectsUnknownArg(t *testing.T) {
	proj := testutil.NewProject(t)
	path := proj.Write("Top/TopAppAi.xml", `<assembly name="Top"/>`)

	_, err := runCommand(t, NewLintCommand, "--arg", "port-ignor=*.tlmOut", path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLintFailed)
	assert.Contains(t, err.Error(), "port-ignor")
	assert.Contains(t, err.Error(), "accepted: port-ignore")
}

func TestLintCommandArgHelpListsAcceptedNames(t *testing.T) {
	flag := NewLintCommand().Flags().Lookup("arg")
	require.NotNil(t, flag)
	assert.Contains(t, flag.Usage, "port-ignore")
}

func TestCheckArgs(t *testing.T) {
	accepted := []string{"port-ignore"}
	assert.NoError(t, checkArgs(nil, accepted))
	assert.NoError(t, checkArgs(map[string]string{"port-ignore": ""}, accepted))

	err := checkArgs(map[string]string{"zeta": "1", "alpha": "2"}, accepted)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown --arg alpha, zeta")
}

func TestLintCommandNoMatches(t *testing.T) {
	_, err := runCommand(t, NewLintCommand, filepath.Join(t.TempDir(), "**", "*Ai.xml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no XML files match")
}

func TestLintCommandUnknownIdentifier(t *testing.T) {
	proj := testutil.NewProject(t)
	path := proj.Write("Top/TopAppAi.xml", `<assembly name="Top"/>`)

	_, err := runCommand(t, NewLintCommand, "--exclude", "not-a-rule", path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLintFailed)
}
