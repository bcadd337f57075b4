package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureParentDir_CreatesNestedDirectory(t *testing.T) {
	tmp := t.TempDir()

	got, err := EnsureParentDir(filepath.Join(tmp, "data", "vault", "docvault.db"))
	require.NoError(t, err)

	want := filepath.Join(tmp, "data", "vault")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}
}

func TestEnsureParentDir_RelativeAndIdempotent(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	first, err := EnsureParentDir("state/docvault.db")
	require.NoError(t, err)

	second, err := EnsureParentDir("state/docvault.db")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.True(t, filepath.IsAbs(first))
}

func TestEnsureParentDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile("state", []byte("x"), 0o600))

	_, err := EnsureParentDir("state/docvault.db")
	require.Error(t, err, "should fail when a file exists with the directory's name")
}

func TestIsFilePath(t *testing.T) {
	require.True(t, IsFilePath("docvault.db"))
	require.True(t, IsFilePath("/var/lib/docvault/docvault.db"))
	require.False(t, IsFilePath(":memory:"))
	require.False(t, IsFilePath("file::memory:?cache=shared"))
	require.False(t, IsFilePath(""))
}
