package finalize

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"filedropbox/internal/logger"
)

// renameResult is the outcome of moving a temporary upload into the
// upload directory.
type renameResult struct {
	// Name is the final stored filename
	Name string
	// Path is the full stored path
	Path string
}

// dedupLink moves src into dir under name by creating a hard link and
// removing the original. When the target name is taken it retries with a
// " (N)" counter suffix before the extension. Link creation is atomic at
// the filesystem level, so the existence check and the claim are one
// operation and concurrent completions cannot take the same name.
//
// Failures never lose the upload: a name resolving outside dir, or any
// filesystem error other than "target exists", falls back to keeping the
// file under its opaque transfer identifier.
func dedupLink(dir, src, name string) renameResult {
	fallback := renameResult{Name: filepath.Base(src), Path: src}

	resolvedDir, err := filepath.Abs(dir)
	if err != nil {
		logger.Errorf("Failed to resolve upload directory %s: %v", dir, err)
		return fallback
	}

	// Path traversal defense: the target must be a strict descendant of dir
	candidatePath := filepath.Join(resolvedDir, name)
	if !strings.HasPrefix(candidatePath, resolvedDir+string(filepath.Separator)) {
		logger.WarnWithFields("Rejected filename escaping the upload directory", map[string]interface{}{
			"filename": name,
		})
		return fallback
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := name

	for counter := 1; ; counter++ {
		targetPath := filepath.Join(resolvedDir, candidate)
		err := os.Link(src, targetPath)
		if err == nil {
			removeQuiet(src)
			return renameResult{Name: candidate, Path: targetPath}
		}
		if errors.Is(err, fs.ErrExist) {
			candidate = fmt.Sprintf("%s (%d)%s", base, counter, ext)
			continue
		}
		// Other error (permissions, disk full): keep the transfer-ID filename
		logger.Errorf("Failed to rename upload file: %v", err)
		return fallback
	}
}

// removeQuiet deletes a file and swallows any failure. Cleanup of
// already-linked temp files and metadata sidecars is best-effort; a
// leftover file is logged, never propagated.
func removeQuiet(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warnf("Failed to remove %s: %v", path, err)
	}
}
