package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/hashfold/internal/ir"
	"github.com/roach88/hashfold/internal/store"
)

// Register resolves root to an absolute path and records it. Registering a
// root twice returns the same id.
//
// A store written before multi-root support carries a single legacy root. If
// that root differs from the one being registered, the whole store is dropped
// and rebuilt (logged as a warning). If it matches, the legacy rows are
// adopted under the new layout.
func (l *Ledger) Register(ctx context.Context, root string) (ir.RootID, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidPath, root, err)
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidPath, root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s: not a directory", ErrInvalidPath, root)
	}
	id := ir.RootID(abs)

	if err := l.reconcileLegacyRoot(ctx, id); err != nil {
		return "", fmt.Errorf("register %s: %w", abs, err)
	}

	if _, ok := l.roots[id]; ok {
		return id, nil
	}
	if err := l.st.Roots().Insert(ctx, id); err != nil {
		return "", fmt.Errorf("register %s: %w", abs, err)
	}
	l.roots[id] = struct{}{}
	l.log.Debug("root registered", "root", abs)
	return id, nil
}

func (l *Ledger) reconcileLegacyRoot(ctx context.Context, id ir.RootID) error {
	legacy, ok, err := l.st.Common().Get(ctx, ir.CommonLegacyRoot)
	if err != nil || !ok {
		return err
	}

	if ir.RootID(legacy) != id {
		l.log.Warn("new root, dropping all existing ledger data",
			"root", string(id),
			"was", legacy,
		)
		return l.reinitialize(ctx)
	}

	err = l.st.WithTx(ctx, func(tx *sql.Tx) error {
		if err := store.Roots(tx).Insert(ctx, id); err != nil {
			return err
		}
		n, err := store.Files(tx).AdoptLegacy(ctx, id)
		if err != nil {
			return err
		}
		if err := store.HashPerf(tx).AdoptLegacy(ctx, id); err != nil {
			return err
		}
		l.log.Info("adopted single-root ledger", "root", string(id), "events", n)
		return store.Common(tx).Delete(ctx, ir.CommonLegacyRoot)
	})
	if err != nil {
		return err
	}
	return l.loadIndex(ctx)
}

// Roots returns every registered root.
func (l *Ledger) Roots(ctx context.Context) ([]ir.RootID, error) {
	return l.st.Roots().List(ctx)
}

func (l *Ledger) requireRoot(root ir.RootID) error {
	if _, ok := l.roots[root]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRoot, root)
	}
	return nil
}
