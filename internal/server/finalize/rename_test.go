package finalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDedupLinkStoresUnderDeclaredName(t *testing.T) {
	dir := t.TempDir()
	src := writeTemp(t, dir, "tus-id-1", "payload")

	got := dedupLink(dir, src, "report.pdf")

	require.Equal(t, "report.pdf", got.Name)
	data, err := os.ReadFile(got.Path)
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))
	// The temporary file was cleaned up
	_, err = os.Stat(src)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDedupLinkAppendsCounterSuffixes(t *testing.T) {
	dir := t.TempDir()

	first := dedupLink(dir, writeTemp(t, dir, "tus-id-1", "one"), "report.pdf")
	second := dedupLink(dir, writeTemp(t, dir, "tus-id-2", "two"), "report.pdf")
	third := dedupLink(dir, writeTemp(t, dir, "tus-id-3", "three"), "report.pdf")

	require.Equal(t, "report.pdf", first.Name)
	require.Equal(t, "report (1).pdf", second.Name)
	require.Equal(t, "report (2).pdf", third.Name)

	data, err := os.ReadFile(filepath.Join(dir, "report (1).pdf"))
	require.NoError(t, err)
	require.Equal(t, "two", string(data))
}

func TestDedupLinkConcurrentCompletionsGetDistinctNames(t *testing.T) {
	dir := t.TempDir()

	const n = 8
	results := make(chan renameResult, n)
	for i := 0; i < n; i++ {
		src := writeTemp(t, dir, "tus-id-"+string(rune('a'+i)), "x")
		go func(src string) {
			results <- dedupLink(dir, src, "clash.txt")
		}(src)
	}

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		r := <-results
		require.False(t, seen[r.Name], "duplicate stored name %s", r.Name)
		seen[r.Name] = true
	}
}

func TestDedupLinkRejectsEscapingNames(t *testing.T) {
	dir := t.TempDir()
	src := writeTemp(t, dir, "tus-id-1", "payload")

	got := dedupLink(dir, src, "../escape.txt")

	// Falls back to the opaque transfer identifier
	require.Equal(t, "tus-id-1", got.Name)
	require.Equal(t, src, got.Path)
	_, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDedupLinkFallsBackOnFilesystemError(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "missing-src")

	got := dedupLink(dir, src, "report.pdf")

	require.Equal(t, "missing-src", got.Name)
	require.Equal(t, src, got.Path)
}

func TestRemoveQuietSwallowsMissingFiles(t *testing.T) {
	// Attempting cleanup of a missing file must not panic or propagate
	removeQuiet(filepath.Join(t.TempDir(), "never-existed"))

	path := writeTemp(t, t.TempDir(), "present", "x")
	removeQuiet(path)
	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}
