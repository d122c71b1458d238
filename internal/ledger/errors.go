package ledger

import "errors"

var (
	// ErrNotFound reports a lookup for a path the ledger has never recorded.
	ErrNotFound = errors.New("ledger: not found")

	// ErrInvalidPath reports a root that does not resolve to a directory.
	ErrInvalidPath = errors.New("ledger: invalid path")

	// ErrUnknownRoot reports an operation on a root that was never registered.
	ErrUnknownRoot = errors.New("ledger: unknown root")
)
