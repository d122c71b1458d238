package store

import (
	"context"
	"fmt"

	"github.com/roach88/hashfold/internal/ir"
)

// RootRepo reads and writes the roots table.
type RootRepo struct {
	q Querier
}

// Roots returns a RootRepo over q.
func Roots(q Querier) RootRepo { return RootRepo{q: q} }

// Insert registers root. Registering an existing root is a no-op.
func (r RootRepo) Insert(ctx context.Context, root ir.RootID) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO roots (absroot) VALUES (?)
		ON CONFLICT(absroot) DO NOTHING
	`, string(root))
	if err != nil {
		return fmt.Errorf("insert root: %w", err)
	}
	return nil
}

// List returns all registered roots in lexical order.
func (r RootRepo) List(ctx context.Context) ([]ir.RootID, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT absroot FROM roots ORDER BY absroot COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query roots: %w", err)
	}
	defer rows.Close()

	roots := []ir.RootID{}
	for rows.Next() {
		var root string
		if err := rows.Scan(&root); err != nil {
			return nil, fmt.Errorf("scan root: %w", err)
		}
		roots = append(roots, ir.RootID(root))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roots: %w", err)
	}
	return roots, nil
}
