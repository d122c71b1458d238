package ir

import (
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// RelPath converts an OS-specific relative path to the slash-separated form
// stored in the ledger.
func RelPath(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// AbsPath joins a root and a stored relative path into an OS path.
func AbsPath(root RootID, rel string) string {
	return filepath.Join(string(root), filepath.FromSlash(rel))
}

// HasPathPrefix reports whether rel lies under prefix. Both sides are
// compared in NFC so that a prefix typed on one platform matches names that
// another filesystem stored decomposed. An empty prefix matches everything.
func HasPathPrefix(rel, prefix string) bool {
	if prefix == "" || prefix == "." {
		return true
	}
	rel = norm.NFC.String(rel)
	prefix = strings.TrimSuffix(norm.NFC.String(filepath.ToSlash(prefix)), "/")
	return rel == prefix || strings.HasPrefix(rel, prefix+"/")
}
