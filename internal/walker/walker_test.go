package walker

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(f), 0o644))
	}
	return root
}

func collect(t *testing.T, e Enumerator, root string) []string {
	t.Helper()
	var got []string
	for p, err := range e.Paths(root) {
		require.NoError(t, err)
		got = append(got, p)
	}
	return got
}

func TestWalker_LexicalOrderSlashPaths(t *testing.T) {
	root := makeTree(t, "src/b.txt", "src/a.txt", "top.txt", "src/nested/c.txt")

	got := collect(t, New(), root)

	assert.Equal(t, []string{"src/a.txt", "src/b.txt", "src/nested/c.txt", "top.txt"}, got)
}

func TestWalker_Restartable(t *testing.T) {
	root := makeTree(t, "a", "b")
	w := New()

	assert.Equal(t, collect(t, w, root), collect(t, w, root))
}

func TestWalker_ExcludesMetadataDir(t *testing.T) {
	root := makeTree(t, ".hashfold/ledger.db", "keep.txt", "sub/.hashfold/x")

	got := collect(t, New(".hashfold"), root)

	assert.Equal(t, []string{"keep.txt"}, got)
}

func TestWalker_SkipsSymlinks(t *testing.T) {
	root := makeTree(t, "real.txt")
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))

	assert.Equal(t, []string{"real.txt"}, collect(t, New(), root))
}

func TestWalker_EarlyBreak(t *testing.T) {
	root := makeTree(t, "a", "b", "c")

	var got []string
	for p, err := range New().Paths(root) {
		require.NoError(t, err)
		got = append(got, p)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestWalker_MissingRoot(t *testing.T) {
	var errs int
	for _, err := range New().Paths(filepath.Join(t.TempDir(), "missing")) {
		if err != nil {
			errs++
		}
	}
	assert.Equal(t, 1, errs)
}

func TestWalker_SkipsUnreadableSubdirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced")
	}
	root := makeTree(t, "a.txt", "locked/hidden.txt", "z/after.txt")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	w := New()
	var skipped []string
	w.OnSkip = func(path string, err error) {
		assert.Error(t, err)
		skipped = append(skipped, path)
	}

	assert.Equal(t, []string{"a.txt", "z/after.txt"}, collect(t, w, root))
	assert.Equal(t, []string{locked}, skipped)
}
