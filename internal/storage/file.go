// Package storage provides file-backed persistence for the watchlist and
// scan exports, and the StorageManager tying them to scan history.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sanitizeKey makes a key safe for use as a filename.
// Replaces /, \, : and spaces with _ and collapses ".." to "_" to prevent
// path traversal. Single dots are kept (common in tickers like BHP.AU).
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_", " ", "_")
	return r.Replace(key)
}

// writeAtomic writes data to target via a temp file in the same directory
// and a rename, so readers never observe a partially written file. When
// versions > 0 the previous file is rotated to target.v1 .. target.vN first.
func writeAtomic(target string, data []byte, versions int) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if versions > 0 {
		rotateVersions(target, versions)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// rotateVersions shifts existing versions up and copies current to v1.
// v{N} -> deleted, v{N-1} -> v{N}, ..., v1 -> v2, current -> v1
func rotateVersions(target string, versions int) {
	oldest := fmt.Sprintf("%s.v%d", target, versions)
	os.Remove(oldest)

	for i := versions; i > 1; i-- {
		src := fmt.Sprintf("%s.v%d", target, i-1)
		dst := fmt.Sprintf("%s.v%d", target, i)
		os.Rename(src, dst) // may not exist yet
	}

	// Copy rather than move so target stays readable until the final rename.
	if data, err := os.ReadFile(target); err == nil {
		os.WriteFile(target+".v1", data, 0644)
	}
}
