package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messyComponent = `<?xml-model href="component.rng"?>
<component name="Comp"><ports>
<port name="p" data_type="T" kind="output"/></ports>
</component>`

func TestNormalizeCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CompComponentAi.xml")
	require.NoError(t, os.WriteFile(path, []byte(messyComponent), 0o644))

	out, err := runCommand(t, NewNormalizeCommand, path)
	require.NoError(t, err)
	assert.Contains(t, out, "normalized "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, string(data), `<?xml-model href="component.rng"?>`)
	assert.FileExists(t, filepath.Join(dir, ".CompComponentAi.xml.0.bak"))
}

func TestNormalizeCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CompComponentAi.xml")
	require.NoError(t, os.WriteFile(path, []byte(messyComponent), 0o644))

	out, err := runCommand(t, NewNormalizeCommand, "--check", path)
	require.Error(t, err)
	assert.Contains(t, out, "would normalize")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, messyComponent, string(data), "check mode never writes")
}

func TestNormalizeRejectsBrokenXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "BadAi.xml")
	require.NoError(t, os.WriteFile(path, []byte("<component>"), 0o644))

	_, err := runCommand(t, NewNormalizeCommand, path)
	require.Error(t, err)
}
