package syncing

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/polaMikhail/directory-sync/src/mirror"
)

// Applier executes reconciliation actions against the filesystem. Each
// action succeeds or fails on its own: a failed copy or delete is
// recorded in the report and never aborts the rest of the batch.
type Applier struct {
	fs afero.Fs
}

// NewApplier creates an applier over the given filesystem.
func NewApplier(fs afero.Fs) *Applier {
	return &Applier{fs: fs}
}

// Apply runs the actions in order. Copies create any missing parent
// directories, replace the destination bytes in full and set the
// destination mtime to the source's, so an unchanged pair is a skip on
// the next tick. Deletes remove the destination file only, then prune
// directories the delete left empty. Skips touch nothing and are not
// logged; one log line is emitted per executed copy or delete.
func (a *Applier) Apply(actions []mirror.Action, srcRoot, dstRoot string) *mirror.Report {
	report := &mirror.Report{StartedAt: time.Now()}

	for _, action := range actions {
		switch action.Kind {
		case mirror.ActionSkip:
			report.Skipped++

		case mirror.ActionCopy:
			if err := a.copyFile(action.Path, srcRoot, dstRoot); err != nil {
				slog.Error("Copy failed", "path", action.Path, "error", err)
				report.Failures = append(report.Failures, mirror.Failure{
					Path: action.Path, Kind: mirror.ActionCopy, Reason: err.Error(),
				})
				continue
			}
			slog.Info("Copied file", "path", action.Path)
			report.Copied++

		case mirror.ActionDelete:
			if err := a.deleteFile(action.Path, dstRoot); err != nil {
				slog.Error("Delete failed", "path", action.Path, "error", err)
				report.Failures = append(report.Failures, mirror.Failure{
					Path: action.Path, Kind: mirror.ActionDelete, Reason: err.Error(),
				})
				continue
			}
			slog.Info("Deleted file", "path", action.Path)
			report.Deleted++
		}
	}

	report.FinishedAt = time.Now()
	return report
}

// copyFile replaces dstRoot/rel with a full copy of srcRoot/rel and
// carries the source modification time over.
func (a *Applier) copyFile(rel, srcRoot, dstRoot string) error {
	srcPath := filepath.Join(srcRoot, filepath.FromSlash(rel))
	dstPath := filepath.Join(dstRoot, filepath.FromSlash(rel))

	info, err := a.fs.Stat(srcPath)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	if err := a.fs.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	src, err := a.fs.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dst, err := a.fs.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy contents: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	if err := a.fs.Chtimes(dstPath, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("set modification time: %w", err)
	}
	return nil
}

// deleteFile removes dstRoot/rel and prunes any directories the removal
// left empty, walking up to (but never including) dstRoot.
func (a *Applier) deleteFile(rel, dstRoot string) error {
	dstPath := filepath.Join(dstRoot, filepath.FromSlash(rel))
	if err := a.fs.Remove(dstPath); err != nil {
		return err
	}

	cleanRoot := filepath.Clean(dstRoot)
	for dir := filepath.Dir(dstPath); dir != cleanRoot; dir = filepath.Dir(dir) {
		entries, err := afero.ReadDir(a.fs, dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := a.fs.Remove(dir); err != nil {
			break
		}
		slog.Debug("Removed empty directory", "path", dir)
	}
	return nil
}
