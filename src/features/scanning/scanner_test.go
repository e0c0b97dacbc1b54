package scanning

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fs afero.Fs, path string, modTime time.Time) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte("contents of "+path), 0644))
	require.NoError(t, fs.Chtimes(path, modTime, modTime))
}

func TestScan_RecordsRelativePathsAndModTimes(t *testing.T) {
	fs := afero.NewMemMapFs()
	mtime := time.Unix(1700000000, 0)
	writeFile(t, fs, "/source/a.txt", mtime)
	writeFile(t, fs, "/source/sub/deep/b.txt", mtime.Add(time.Minute))

	snapshot, err := NewScanner(fs).Scan("/source")
	require.NoError(t, err)

	require.Len(t, snapshot, 2)
	assert.True(t, snapshot["a.txt"].Equal(mtime))
	assert.True(t, snapshot["sub/deep/b.txt"].Equal(mtime.Add(time.Minute)))
}

func TestScan_MissingRootFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := NewScanner(fs).Scan("/nope")
	require.Error(t, err)
}

func TestScan_EmptyDirectoriesIgnored(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/source/empty/nested", 0755))
	writeFile(t, fs, "/source/a.txt", time.Unix(100, 0))

	snapshot, err := NewScanner(fs).Scan("/source")
	require.NoError(t, err)

	assert.Len(t, snapshot, 1)
	_, ok := snapshot["a.txt"]
	assert.True(t, ok)
}

func TestScan_Deterministic(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, path := range []string{"/source/a", "/source/b/c", "/source/b/d", "/source/e"} {
		writeFile(t, fs, path, time.Unix(100, 0))
	}

	scanner := NewScanner(fs)
	first, err := scanner.Scan("/source")
	require.NoError(t, err)
	second, err := scanner.Scan("/source")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScan_SkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "real.txt")
	require.NoError(t, os.WriteFile(target, []byte("real"), 0644))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link.txt")))

	snapshot, err := NewScanner(afero.NewOsFs()).Scan(dir)
	require.NoError(t, err)

	_, hasReal := snapshot["real.txt"]
	assert.True(t, hasReal)
	_, hasLink := snapshot["link.txt"]
	assert.False(t, hasLink, "symlinks must not be recorded")
}
