package vfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadWindowWithLineNumbers(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "doc.txt", "alpha\nbeta\ngamma\ndelta\n")

	fs := New()
	got, err := fs.ReadWindow(path, 2, 3, true, "")
	require.NoError(t, err)
	assert.Equal(t, "2: beta\n3: gamma", got)

	plain, err := fs.ReadWindow(path, 2, 3, false, "")
	require.NoError(t, err)
	assert.Equal(t, "beta\ngamma", plain)
}

func TestReadWindowAppliesOmissionCompression(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "doc.txt", "l1\nl2\nl3\nl4\nl5\n")

	fs := New()
	got, err := fs.ReadWindow(path, 1, 5, true, "2-4")
	require.NoError(t, err)
	assert.Equal(t, "1: l1\n[omitted lines: 2-4]\n5: l5", got)
}

func TestReadWindowRejectsMalformedOmissionSpec(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "doc.txt", "l1\nl2\n")

	fs := New()
	_, err := fs.ReadWindow(path, 1, 2, true, "x-y")
	require.Error(t, err)
}

func TestReadWindowRangeErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "doc.txt", "l1\nl2\nl3\n")

	fs := New()
	cases := []struct{ start, end int }{
		{3, 2},
		{0, 1},
		{1, 4},
	}
	for _, c := range cases {
		_, err := fs.ReadWindow(path, c.start, c.end, true, "")
		require.Error(t, err)
		var rerr *RangeError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, 3, rerr.Lines)
	}
}

func TestLineCount(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "doc.txt", "a\nb\nc")

	fs := New()
	n, err := fs.LineCount(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestWriteInMemoryServesFromCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "virtual.txt")

	fs := New()
	require.NoError(t, fs.Write(path, "cached\nonly\n", false))

	// Nothing on disk, but the cache answers reads.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	got, err := fs.ReadWindow(path, 1, 2, false, "")
	require.NoError(t, err)
	assert.Equal(t, "cached\nonly", got)
}

func TestWritePersistUpdatesBackingStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persisted.txt")

	fs := New()
	require.NoError(t, fs.Write(path, "on disk\n", true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "on disk\n", string(data))
}

func TestListFiltersWithAllowList(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "main.py", "pass\n")
	writeFixture(t, dir, "util.py", "pass\n")
	writeFixture(t, dir, "notes.md", "notes\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	fs := New()
	require.NoError(t, fs.Allow("*.py"))

	files, err := fs.List(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "main.py", filepath.Base(files[0]))
	assert.Equal(t, "util.py", filepath.Base(files[1]))
}

func TestListSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "doc.txt", "x\n")

	fs := New()
	files, err := fs.List(path)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, path, files[0])
}

func TestAllowRejectsBadPattern(t *testing.T) {
	fs := New()
	assert.Error(t, fs.Allow("[unclosed"))
}
