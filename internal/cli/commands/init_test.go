package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SterlingPeet/fprime-extras/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommand(t *testing.T) {
	tests := []struct {
		name     string
		existing bool
		args     []string
		wantErr  bool
	}{
		{name: "empty directory"},
		{name: "existing config without force", existing: true, wantErr: true},
		{name: "existing config with force", existing: true, args: []string{"--force"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "fplint.yml")
			if tt.existing {
				require.NoError(t, os.WriteFile(path, []byte("existing"), 0o600))
			}

			out, err := runCommand(t, NewInitCommand, append(tt.args, dir)...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "--force")
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, "Wrote "+path)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(data), "dangling-port-connections (tree, error)")
		})
	}
}

func TestInitCreatesLoadableConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deploy")
	_, err := runCommand(t, NewInitCommand, dir)
	require.NoError(t, err)

	cfg, err := config.LoadConfig(filepath.Join(dir, "fplint.yml"), nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Exclusions)
	assert.Equal(t, config.DefaultJobs, cfg.Jobs)

	app, err := NewApp(nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate(app.Known))
}
