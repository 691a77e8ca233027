// Package source provides the file handle the linter reads documents through.
//
// A File loads its contents once and keeps them in memory for every stage of
// a lint run. Writes go through Write, which saves a one-time backup of the
// original contents next to the file before the first overwrite.
package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// BackupSuffix is appended to the hidden backup written before the first overwrite.
const BackupSuffix = ".0.bak"

// File is a buffered, lazily backed-up handle on a document.
type File struct {
	name     string // path as given by the caller
	fullName string // absolute path

	mu       sync.Mutex
	data     []byte
	mode     os.FileMode
	backedUp bool
}

// Open reads the whole file at path into memory.
func Open(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	f := New(path, data)
	f.mode = info.Mode().Perm()
	return f, nil
}

// New wraps in-memory contents. Write still targets path on disk.
func New(path string, data []byte) *File {
	full, err := filepath.Abs(path)
	if err != nil {
		full = filepath.Clean(path)
	}
	return &File{
		name:     path,
		fullName: full,
		data:     data,
		mode:     0o644,
	}
}

// Name returns the path as given to Open.
func (f *File) Name() string { return f.name }

// FullName returns the absolute path of the file.
func (f *File) FullName() string { return f.fullName }

// Dir returns the absolute directory containing the file.
func (f *File) Dir() string { return filepath.Dir(f.fullName) }

// Ext returns the file extension including the dot.
func (f *File) Ext() string { return filepath.Ext(f.name) }

// Bytes returns the current contents. Callers must not modify the slice.
func (f *File) Bytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data
}

// LineCount returns the number of lines in the contents.
// A trailing newline does not start a new line; empty contents have zero lines.
func (f *File) LineCount() int {
	data := f.Bytes()
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}

// Line returns the 1-based line n without its line terminator.
func (f *File) Line(n int) (string, bool) {
	if n < 1 {
		return "", false
	}
	data := f.Bytes()
	for i := 1; i < n; i++ {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return "", false
		}
		data = data[idx+1:]
	}
	if len(data) == 0 {
		return "", false
	}
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		data = data[:idx]
	}
	return string(bytes.TrimSuffix(data, []byte{'\r'})), true
}

// ResolveRelative resolves p against the directory holding the file.
func (f *File) ResolveRelative(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(f.Dir(), p)
}

// BackupPath returns where the original contents are saved before the first write.
func (f *File) BackupPath() string {
	return filepath.Join(f.Dir(), "."+filepath.Base(f.fullName)+BackupSuffix)
}

// Write replaces the file contents on disk. The original contents are
// copied to BackupPath once, before the first write through this handle.
func (f *File) Write(contents []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.backedUp {
		if err := os.WriteFile(f.BackupPath(), f.data, f.mode); err != nil {
			return fmt.Errorf("failed to write backup for %s: %w", f.name, err)
		}
		f.backedUp = true
	}
	if err := os.WriteFile(f.fullName, contents, f.mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.name, err)
	}
	f.data = contents
	return nil
}
