//go:build windows

package probe

import (
	"errors"
	"io/fs"
	"os"

	"golang.org/x/sys/windows"
)

// windowsProbe reads FILE_ATTRIBUTE_* bits and detects locks by asking for
// a non-blocking shared byte-range lock.
type windowsProbe struct{}

func newPlatformProbe() Probe {
	return windowsProbe{}
}

func (windowsProbe) IsHidden(path string) bool {
	return hasAttribute(path, windows.FILE_ATTRIBUTE_HIDDEN)
}

func (windowsProbe) IsSystem(path string) bool {
	return hasAttribute(path, windows.FILE_ATTRIBUTE_SYSTEM)
}

func (windowsProbe) IsLocked(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, windows.ERROR_SHARING_VIOLATION) || errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
			return true
		}
		return !errors.Is(err, fs.ErrNotExist)
	}
	defer f.Close()

	h := windows.Handle(f.Fd())
	ol := new(windows.Overlapped)
	if err := windows.LockFileEx(h, windows.LOCKFILE_FAIL_IMMEDIATELY, 0, 1, 0, ol); err != nil {
		return true
	}
	_ = windows.UnlockFileEx(h, 0, 1, 0, ol)
	return false
}

func hasAttribute(path string, bit uint32) bool {
	p, err := windows.UTF16PtrFromString(longPath(path))
	if err != nil {
		return false
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return false
	}
	return attrs&bit != 0
}

// longPath prefixes absolute paths with \\?\ so paths beyond MAX_PATH resolve.
func longPath(path string) string {
	const prefix = `\\?\`
	if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
		return path
	}
	if len(path) >= 2 && path[1] == ':' {
		return prefix + path
	}
	return path
}
