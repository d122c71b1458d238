//go:build unix

package probe

import (
	"errors"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// unixProbe uses flock(2) for lock detection. Unix has no hidden or system
// attribute bits; dot-files are a naming convention, not an attribute.
type unixProbe struct{}

func newPlatformProbe() Probe {
	return unixProbe{}
}

func (unixProbe) IsHidden(string) bool { return false }
func (unixProbe) IsSystem(string) bool { return false }

// IsLocked takes and immediately releases a non-blocking shared lock. A
// shared lock only conflicts with an exclusive one, so concurrent readers do
// not make a file look locked.
func (unixProbe) IsLocked(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		// A missing file is not locked; the caller's stat reports it.
		return !errors.Is(err, fs.ErrNotExist)
	}
	defer f.Close()

	fd := int(f.Fd())
	if err := unix.Flock(fd, unix.LOCK_SH|unix.LOCK_NB); err != nil {
		return errors.Is(err, unix.EWOULDBLOCK)
	}
	_ = unix.Flock(fd, unix.LOCK_UN)
	return false
}
