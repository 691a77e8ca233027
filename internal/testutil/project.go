package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Project is a temporary F Prime checkout on disk.
type Project struct {
	Root string
	t    testing.TB
}

// NewProject creates a temp directory marked as an F Prime root with
// cmake/FPrime.cmake.
func NewProject(t testing.TB) *Project {
	t.Helper()
	root := t.TempDir()
	p := &Project{Root: root, t: t}
	p.Write("cmake/FPrime.cmake", "# marker\n")
	return p
}

// Write creates rel under the project root with the given contents and
// returns the absolute path.
func (p *Project) Write(rel, contents string) string {
	p.t.Helper()
	path := filepath.Join(p.Root, filepath.FromSlash(rel))
	require.NoError(p.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(p.t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

// Port writes an interface descriptor for namespace::name at rel.
func (p *Project) Port(rel, namespace, name string) string {
	p.t.Helper()
	return p.Write(rel, `<?xml version="1.0" encoding="UTF-8"?>
<interface name="`+name+`" namespace="`+namespace+`">
  <args/>
</interface>
`)
}
