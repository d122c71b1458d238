// Package probe answers platform-specific questions about a file: whether it
// carries the hidden or system attribute and whether another process holds
// an exclusive lock on it.
//
// Each platform provides its own implementation, selected at build time by
// New. Platforms without hidden/system attributes report false for both; the
// lock probe works everywhere.
package probe

// Probe is the attribute capability the ledger consults before hashing.
type Probe interface {
	// IsHidden reports whether the OS marks the file hidden.
	IsHidden(path string) bool

	// IsSystem reports whether the OS marks the file as a system file.
	IsSystem(path string) bool

	// IsLocked reports whether the file is currently unavailable because
	// another process holds an exclusive lock or denies access.
	IsLocked(path string) bool
}

// New returns the probe for the running platform.
func New() Probe {
	return newPlatformProbe()
}

// Static is a Probe with fixed answers, for callers that want to bypass OS
// probing entirely.
type Static struct {
	Hidden bool
	System bool
	Locked func(path string) bool
}

func (s Static) IsHidden(string) bool { return s.Hidden }
func (s Static) IsSystem(string) bool { return s.System }

func (s Static) IsLocked(path string) bool {
	if s.Locked == nil {
		return false
	}
	return s.Locked(path)
}
