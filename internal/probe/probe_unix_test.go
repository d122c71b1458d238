//go:build unix

package probe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestUnixProbe_NoAttributes(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".hidden")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	p := New()
	assert.False(t, p.IsHidden(path), "unix has no hidden attribute")
	assert.False(t, p.IsSystem(path))
}

func TestUnixProbe_UnlockedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	assert.False(t, New().IsLocked(path))
}

func TestUnixProbe_ExclusiveLockDetected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	// flock locks belong to the open file description, so a second open in
	// this process conflicts just like another process would.
	holder, err := os.Open(path)
	require.NoError(t, err)
	defer holder.Close()
	require.NoError(t, unix.Flock(int(holder.Fd()), unix.LOCK_EX|unix.LOCK_NB))

	assert.True(t, New().IsLocked(path))

	require.NoError(t, unix.Flock(int(holder.Fd()), unix.LOCK_UN))
	assert.False(t, New().IsLocked(path))
}

func TestUnixProbe_SharedLockIsNotLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	reader, err := os.Open(path)
	require.NoError(t, err)
	defer reader.Close()
	require.NoError(t, unix.Flock(int(reader.Fd()), unix.LOCK_SH|unix.LOCK_NB))

	assert.False(t, New().IsLocked(path))
}

func TestUnixProbe_MissingFileIsNotLocked(t *testing.T) {
	assert.False(t, New().IsLocked(filepath.Join(t.TempDir(), "missing")))
}

func TestStatic(t *testing.T) {
	p := Static{Hidden: true, Locked: func(path string) bool { return path == "busy" }}

	assert.True(t, p.IsHidden("x"))
	assert.False(t, p.IsSystem("x"))
	assert.True(t, p.IsLocked("busy"))
	assert.False(t, p.IsLocked("free"))
}
