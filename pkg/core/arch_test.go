package core_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// imports lists the imports of the non-test Go files in dir.
func imports(t *testing.T, dir string) map[string][]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}

	fset := token.NewFileSet()
	out := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") || strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", path, err)
			continue
		}
		for _, imp := range f.Imports {
			out[entry.Name()] = append(out[entry.Name()], strings.Trim(imp.Path.Value, `"`))
		}
	}
	return out
}

// TestCoreImportsOnlyStdlib keeps pkg/core at the bottom of the import graph.
func TestCoreImportsOnlyStdlib(t *testing.T) {
	for file, paths := range imports(t, ".") {
		for _, p := range paths {
			// Standard library paths have no dot in the first element.
			if first, _, _ := strings.Cut(p, "/"); strings.Contains(first, ".") {
				t.Errorf("%s imports non-stdlib package: %s", file, p)
			}
		}
	}
}

// TestLibraryDoesNotImportCLI verifies the pkg tree never reaches into the
// command-line layer.
func TestLibraryDoesNotImportCLI(t *testing.T) {
	for _, dir := range []string{"../check", "../check/checks", "../lint", "../lint/rules", "../source", "../topology", "../xmldoc"} {
		for file, paths := range imports(t, dir) {
			for _, p := range paths {
				if strings.Contains(p, "/internal/cli") {
					t.Errorf("%s/%s imports CLI package: %s", dir, file, p)
				}
			}
		}
	}
}
