// Package vfs provides cached document access for the scan engine: whole-file
// reads, windowed reads with optional line numbering and omission compression,
// writes, and allow-list filtered directory listings.
package vfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/graphscout-dev/graphscout/internal/lines"
)

// DefaultCacheSize bounds the whole-file read cache.
const DefaultCacheSize = 256

// RangeError reports window bounds outside a document's extent.
type RangeError struct {
	Path  string
	Start int
	End   int
	Lines int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid line range %d-%d for %s (%d lines)", e.Start, e.End, e.Path, e.Lines)
}

type allowPattern struct {
	raw     string
	matcher glob.Glob
}

// FS is a cached local filesystem. Reads are cached by resolved path; writes
// update the cache and optionally the backing store. Not safe for concurrent
// mutation: the engine is single-threaded and the cache is single-writer.
type FS struct {
	cache *lru.Cache[string, string]
	allow []allowPattern
}

// New creates an FS with the default cache size.
func New() *FS {
	cache, err := lru.New[string, string](DefaultCacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &FS{cache: cache}
}

// Allow registers a glob pattern for List filtering. A file is listed when it
// matches any registered pattern (full path or base name). With no patterns,
// every file is listed.
func (f *FS) Allow(pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid allow pattern %q: %w", pattern, err)
	}
	f.allow = append(f.allow, allowPattern{raw: pattern, matcher: matcher})
	return nil
}

// ReadWhole returns the full content of a file, served from cache when
// available.
func (f *FS) ReadWhole(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	if content, ok := f.cache.Get(abs); ok {
		return content, nil
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", abs, err)
	}
	content := string(data)
	f.cache.Add(abs, content)
	return content, nil
}

// LineCount returns the number of lines in a file.
func (f *FS) LineCount(path string) (int, error) {
	content, err := f.ReadWhole(path)
	if err != nil {
		return 0, err
	}
	return len(splitLines(content)), nil
}

// ReadWindow returns the content of lines start..end (1-based, inclusive).
// With withLineNumbers each line is rendered as "N: content"; omission
// markers are rendered bare. omitSpec names lines to compress away, in the
// notation of lines.ParseRanges; a malformed spec is a fatal format error.
func (f *FS) ReadWindow(path string, start, end int, withLineNumbers bool, omitSpec string) (string, error) {
	content, err := f.ReadWhole(path)
	if err != nil {
		return "", err
	}
	all := splitLines(content)
	if start < 1 || start > end || end > len(all) {
		return "", &RangeError{Path: path, Start: start, End: end, Lines: len(all)}
	}

	window := make([]lines.Line, 0, end-start+1)
	for n := start; n <= end; n++ {
		window = append(window, lines.Line{Number: n, Content: all[n-1]})
	}

	if omitSpec != "" {
		omitted, err := lines.ParseRanges(omitSpec)
		if err != nil {
			return "", fmt.Errorf("omission spec for %s: %w", path, err)
		}
		window = lines.Compress(window, omitted)
	}

	rendered := make([]string, 0, len(window))
	for _, ln := range window {
		if !withLineNumbers || ln.Number == lines.MarkerNumber {
			rendered = append(rendered, ln.Content)
			continue
		}
		rendered = append(rendered, fmt.Sprintf("%d: %s", ln.Number, ln.Content))
	}
	return strings.Join(rendered, "\n"), nil
}

// Write stores content for a path. When persist is true the backing file is
// written as well; otherwise the content lives only in the cache.
func (f *FS) Write(path, content string, persist bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if persist {
		if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
			return fmt.Errorf("write %s: %w", abs, err)
		}
	}
	f.cache.Add(abs, content)
	return nil
}

// List returns the files of a directory in name order, filtered by the allow
// list. A path naming a regular file lists just that file.
func (f *FS) List(path string) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return []string{abs}, nil
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", abs, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		full := filepath.Join(abs, entry.Name())
		if f.allowed(full) {
			files = append(files, full)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (f *FS) allowed(path string) bool {
	if len(f.allow) == 0 {
		return true
	}
	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, p := range f.allow {
		if p.matcher.Match(slashed) || p.matcher.Match(base) {
			return true
		}
	}
	return false
}

func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}
