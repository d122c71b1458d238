package ir

import "time"

// RootID identifies a tracked directory tree by its absolute, cleaned path.
type RootID string

// String returns the root path.
func (r RootID) String() string { return string(r) }

// FileEvent is an immutable snapshot of one file appended to the ledger.
// The current state of (Root, Path) is the event with the greatest Seq.
type FileEvent struct {
	Root    RootID    `json:"root"`
	Path    string    `json:"path"`     // relative to Root, slash separated
	Hash    string    `json:"sha512"`   // hex SHA-512 of the content
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mtime"`    // UTC
	Hidden  bool      `json:"hidden"`
	System  bool      `json:"system"`
	Seq     int64     `json:"sequence"` // ledger-wide, strictly increasing
}

// Key returns the (root, path) identity of the event.
func (e FileEvent) Key() PathKey {
	return PathKey{Root: e.Root, Path: e.Path}
}

// PathKey identifies a file independently of its history.
type PathKey struct {
	Root RootID
	Path string
}

// HashPerfEntry records how long hashing a big file took.
type HashPerfEntry struct {
	Root    RootID        `json:"root"`
	Path    string        `json:"path"`
	Elapsed time.Duration `json:"elapsed"`
}

// Seconds returns the elapsed time as fractional seconds, the unit persisted
// in the hashperf table.
func (e HashPerfEntry) Seconds() float64 {
	return e.Elapsed.Seconds()
}

// Common metadata keys.
const (
	CommonUpdateTime = "updatetime"
	CommonProcessor  = "processor"
	CommonMachine    = "machine"
	CommonLedgerID   = "ledgerid"

	// CommonLegacyRoot is only present in stores written before multi-root
	// support. Its value is the single root such a store tracked.
	CommonLegacyRoot = "absroot"
)
