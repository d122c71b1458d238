package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/roach88/hashfold/internal/ir"
)

// DuplicateGroup is a set of current paths under one root sharing content.
type DuplicateGroup struct {
	Hash  string   `json:"sha512"`
	Size  int64    `json:"size"`
	Paths []string `json:"paths"`
}

// FindPaths returns the relative paths under root whose current content has
// the given hash and which lie under prefix. Superseded events never match.
// The result is sorted and never nil.
func (l *Ledger) FindPaths(ctx context.Context, hash string, root ir.RootID, prefix string) ([]string, error) {
	events, err := l.st.Files().ByHash(ctx, root, hash)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", hash, err)
	}

	paths := []string{}
	seen := map[string]struct{}{}
	for _, ev := range events {
		if l.current[ev.Key()] != ev.Seq {
			continue
		}
		if !ir.HasPathPrefix(ev.Path, prefix) {
			continue
		}
		if _, dup := seen[ev.Path]; dup {
			continue
		}
		seen[ev.Path] = struct{}{}
		paths = append(paths, ev.Path)
	}
	sort.Strings(paths)
	return paths, nil
}

// Duplicates groups the current files under root by content and returns the
// groups with more than one path, largest files first.
func (l *Ledger) Duplicates(ctx context.Context, root ir.RootID) ([]DuplicateGroup, error) {
	if err := l.requireRoot(root); err != nil {
		return nil, err
	}
	events, err := l.st.Files().Current(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("duplicates %s: %w", root, err)
	}

	byHash := map[string]*DuplicateGroup{}
	for _, ev := range events {
		g, ok := byHash[ev.Hash]
		if !ok {
			g = &DuplicateGroup{Hash: ev.Hash, Size: ev.Size}
			byHash[ev.Hash] = g
		}
		g.Paths = append(g.Paths, ev.Path)
	}

	groups := []DuplicateGroup{}
	for _, g := range byHash {
		if len(g.Paths) < 2 {
			continue
		}
		sort.Strings(g.Paths)
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Size != groups[j].Size {
			return groups[i].Size > groups[j].Size
		}
		return groups[i].Hash < groups[j].Hash
	})
	return groups, nil
}
