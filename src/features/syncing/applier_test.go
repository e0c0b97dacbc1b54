package syncing

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polaMikhail/directory-sync/src/mirror"
)

func writeFile(t *testing.T, fs afero.Fs, path, contents string, modTime time.Time) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(contents), 0644))
	require.NoError(t, fs.Chtimes(path, modTime, modTime))
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestApply_CopyCreatesFileWithSourceModTime(t *testing.T) {
	fs := afero.NewMemMapFs()
	mtime := time.Unix(1700000000, 0)
	writeFile(t, fs, "/src/sub/a.txt", "hello", mtime)
	require.NoError(t, fs.MkdirAll("/dst", 0755))

	report := NewApplier(fs).Apply([]mirror.Action{
		{Kind: mirror.ActionCopy, Path: "sub/a.txt"},
	}, "/src", "/dst")

	assert.Equal(t, 1, report.Copied)
	assert.Empty(t, report.Failures)
	assert.Equal(t, "hello", readFile(t, fs, "/dst/sub/a.txt"))

	info, err := fs.Stat("/dst/sub/a.txt")
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime), "destination mtime must match the source's")
}

func TestApply_CopyOverwritesInFull(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/src/a.txt", "new", time.Unix(200, 0))
	writeFile(t, fs, "/dst/a.txt", "old contents that are longer", time.Unix(100, 0))

	report := NewApplier(fs).Apply([]mirror.Action{
		{Kind: mirror.ActionCopy, Path: "a.txt"},
	}, "/src", "/dst")

	assert.Equal(t, 1, report.Copied)
	assert.Equal(t, "new", readFile(t, fs, "/dst/a.txt"))
}

func TestApply_SkipTouchesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	mtime := time.Unix(300, 0)
	writeFile(t, fs, "/src/a.txt", "same", mtime)
	writeFile(t, fs, "/dst/a.txt", "same", mtime)

	report := NewApplier(fs).Apply([]mirror.Action{
		{Kind: mirror.ActionSkip, Path: "a.txt"},
	}, "/src", "/dst")

	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Copied)
	assert.Equal(t, 0, report.Deleted)
	assert.Equal(t, "same", readFile(t, fs, "/dst/a.txt"))

	info, err := fs.Stat("/dst/a.txt")
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestApply_DeleteRemovesFileAndPrunesEmptyDirs(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/dst/only/here/stale.txt", "stale", time.Unix(100, 0))
	writeFile(t, fs, "/dst/kept.txt", "kept", time.Unix(100, 0))
	require.NoError(t, fs.MkdirAll("/src", 0755))

	report := NewApplier(fs).Apply([]mirror.Action{
		{Kind: mirror.ActionDelete, Path: "only/here/stale.txt"},
	}, "/src", "/dst")

	assert.Equal(t, 1, report.Deleted)

	exists, err := afero.Exists(fs, "/dst/only/here/stale.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	// Directories emptied by the delete are pruned, the root is not.
	for _, dir := range []string{"/dst/only/here", "/dst/only"} {
		ok, err := afero.DirExists(fs, dir)
		require.NoError(t, err)
		assert.False(t, ok, "%s should have been pruned", dir)
	}
	ok, err := afero.DirExists(fs, "/dst")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "kept", readFile(t, fs, "/dst/kept.txt"))
}

func TestApply_DeleteNeverTouchesSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/src/a.txt", "source", time.Unix(100, 0))
	writeFile(t, fs, "/dst/b.txt", "stale", time.Unix(100, 0))

	NewApplier(fs).Apply([]mirror.Action{
		{Kind: mirror.ActionDelete, Path: "b.txt"},
	}, "/src", "/dst")

	assert.Equal(t, "source", readFile(t, fs, "/src/a.txt"))
}

// failingCreateFs fails Create for one path, to simulate a full disk or
// a permission error on a single destination file.
type failingCreateFs struct {
	afero.Fs
	failPath string
}

func (f *failingCreateFs) Create(name string) (afero.File, error) {
	if filepath.ToSlash(name) == f.failPath {
		return nil, fmt.Errorf("create %s: %w", name, os.ErrPermission)
	}
	return f.Fs.Create(name)
}

func TestApply_SingleFailureDoesNotAbortBatch(t *testing.T) {
	base := afero.NewMemMapFs()
	writeFile(t, base, "/src/bad.txt", "bad", time.Unix(100, 0))
	writeFile(t, base, "/src/good.txt", "good", time.Unix(100, 0))
	writeFile(t, base, "/dst/stale.txt", "stale", time.Unix(50, 0))

	fs := &failingCreateFs{Fs: base, failPath: "/dst/bad.txt"}

	report := NewApplier(fs).Apply([]mirror.Action{
		{Kind: mirror.ActionCopy, Path: "bad.txt"},
		{Kind: mirror.ActionCopy, Path: "good.txt"},
		{Kind: mirror.ActionDelete, Path: "stale.txt"},
	}, "/src", "/dst")

	assert.Equal(t, 1, report.Copied)
	assert.Equal(t, 1, report.Deleted)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "bad.txt", report.Failures[0].Path)
	assert.Equal(t, mirror.ActionCopy, report.Failures[0].Kind)
	assert.NotEmpty(t, report.Failures[0].Reason)

	// The independent actions still happened.
	assert.Equal(t, "good", readFile(t, base, "/dst/good.txt"))
	exists, err := afero.Exists(base, "/dst/stale.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}
