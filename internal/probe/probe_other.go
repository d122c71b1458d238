//go:build !unix && !windows

package probe

import (
	"errors"
	"io/fs"
	"os"
)

// basicProbe serves platforms without attribute bits or advisory locks. A
// file that cannot be opened counts as locked.
type basicProbe struct{}

func newPlatformProbe() Probe {
	return basicProbe{}
}

func (basicProbe) IsHidden(string) bool { return false }
func (basicProbe) IsSystem(string) bool { return false }

func (basicProbe) IsLocked(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return !errors.Is(err, fs.ErrNotExist)
	}
	f.Close()
	return false
}
