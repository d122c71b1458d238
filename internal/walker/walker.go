// Package walker enumerates the files under a root directory.
package walker

import (
	"io/fs"
	"iter"
	"path/filepath"
	"slices"

	"github.com/roach88/hashfold/internal/ir"
)

// Enumerator produces the relative paths of every file under a root. The
// sequence is lazy and finite, and ranging over it again restarts the walk.
type Enumerator interface {
	Paths(root string) iter.Seq2[string, error]
}

// Walker walks a tree in lexical order, yielding regular files only.
// Symlinks, devices and other special files are skipped.
type Walker struct {
	// Exclude lists directory or file base names that are never entered or
	// yielded, such as the ledger's own metadata directory.
	Exclude []string

	// OnSkip, if set, is told about each entry below the root that could not
	// be read and was left out of the walk.
	OnSkip func(path string, err error)
}

// New returns a Walker that skips the given base names.
func New(exclude ...string) *Walker {
	return &Walker{Exclude: exclude}
}

// Paths implements Enumerator. Yielded paths are slash separated. An
// unreadable entry below the root is reported to OnSkip and left out; only a
// failure to read the root itself is yielded, and it ends the walk.
func (w *Walker) Paths(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stopped := false
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				if w.OnSkip != nil {
					w.OnSkip(path, err)
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if path == root {
				return nil
			}
			if slices.Contains(w.Exclude, d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if !yield(ir.RelPath(rel), nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield("", err)
		}
	}
}
