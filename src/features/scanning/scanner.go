// Package scanning turns a directory tree into a mirror.Snapshot.
package scanning

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/polaMikhail/directory-sync/src/mirror"
)

// Scanner walks a directory tree and records every regular file's
// relative path and modification time. It performs no writes.
type Scanner struct {
	fs afero.Fs
}

// NewScanner creates a scanner over the given filesystem.
func NewScanner(fs afero.Fs) *Scanner {
	return &Scanner{fs: fs}
}

// Scan builds a snapshot of the tree rooted at root. Paths are relative
// to root and slash-separated so snapshots of different roots compare
// directly. Symbolic links and other non-regular files are skipped with
// a warning; directories are not recorded. A missing or unreadable root
// fails the whole scan.
func (s *Scanner) Scan(root string) (mirror.Snapshot, error) {
	if _, err := s.fs.Stat(root); err != nil {
		return nil, fmt.Errorf("scan root %s: %w", root, err)
	}

	snapshot := mirror.Snapshot{}
	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if info.IsDir() {
			return nil
		}
		if !info.Mode().IsRegular() {
			slog.Warn("Skipping non-regular file", "path", path, "mode", info.Mode().String())
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}

		snapshot[filepath.ToSlash(rel)] = info.ModTime()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}
