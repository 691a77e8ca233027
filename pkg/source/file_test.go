package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineCount(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"empty", "", 0},
		{"single line no newline", "<a/>", 1},
		{"single line with newline", "<a/>\n", 1},
		{"three lines", "<a>\n<b/>\n</a>", 3},
		{"crlf", "<a>\r\n</a>\r\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New("doc.xml", []byte(tt.data))
			assert.Equal(t, tt.want, f.LineCount())
		})
	}
}

func TestLine(t *testing.T) {
	f := New("doc.xml", []byte("first\r\nsecond\nthird"))

	line, ok := f.Line(2)
	require.True(t, ok)
	assert.Equal(t, "second", line)

	line, ok = f.Line(1)
	require.True(t, ok)
	assert.Equal(t, "first", line)

	_, ok = f.Line(0)
	assert.False(t, ok)
	_, ok = f.Line(4)
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "nope.xml"))
		require.Error(t, err)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := Open(t.TempDir())
		require.Error(t, err)
	})

	t.Run("reads contents", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.xml")
		require.NoError(t, os.WriteFile(path, []byte("<a/>\n"), 0o600))

		f, err := Open(path)
		require.NoError(t, err)
		assert.Equal(t, "<a/>\n", string(f.Bytes()))
		assert.Equal(t, ".xml", f.Ext())
		assert.True(t, filepath.IsAbs(f.FullName()))
	})
}

func TestWriteBacksUpOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "TopAi.xml")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o600))

	f, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, f.Write([]byte("first")))
	require.NoError(t, f.Write([]byte("second")))

	backup, err := os.ReadFile(filepath.Join(dir, ".TopAi.xml.0.bak"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(backup), "backup keeps the contents from before the first write")

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(current))
	assert.Equal(t, "second", string(f.Bytes()))
}

func TestResolveRelative(t *testing.T) {
	f := New(filepath.Join("/proj", "Top", "TopAi.xml"), nil)
	assert.Equal(t, filepath.Join("/proj", "Top", "schema.rng"), f.ResolveRelative("schema.rng"))
	assert.Equal(t, "/abs/x.rng", f.ResolveRelative("/abs/x.rng"))
}
