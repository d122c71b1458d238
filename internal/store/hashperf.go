package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/hashfold/internal/ir"
)

// HashPerfRepo reads and writes the hashperf table. It carries no admission
// policy of its own; see package hashperf.
type HashPerfRepo struct {
	q Querier
}

// HashPerf returns a HashPerfRepo over q.
func HashPerf(q Querier) HashPerfRepo { return HashPerfRepo{q: q} }

// Get returns the entry for (root, path) and whether it exists.
func (r HashPerfRepo) Get(ctx context.Context, root ir.RootID, path string) (ir.HashPerfEntry, bool, error) {
	row := r.q.QueryRowContext(ctx, `SELECT absroot, path, time FROM hashperf WHERE absroot = ? AND path = ?`, string(root), path)
	e, err := scanHashPerf(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.HashPerfEntry{}, false, nil
	}
	if err != nil {
		return ir.HashPerfEntry{}, false, err
	}
	return e, true, nil
}

// Count returns the number of entries.
func (r HashPerfRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM hashperf`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count hashperf: %w", err)
	}
	return n, nil
}

// Min returns the fastest entry and whether the table is non-empty. Ties are
// broken by root, then path.
func (r HashPerfRepo) Min(ctx context.Context) (ir.HashPerfEntry, bool, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT absroot, path, time FROM hashperf
		ORDER BY time ASC, absroot COLLATE BINARY ASC, path COLLATE BINARY ASC
		LIMIT 1
	`)
	e, err := scanHashPerf(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.HashPerfEntry{}, false, nil
	}
	if err != nil {
		return ir.HashPerfEntry{}, false, err
	}
	return e, true, nil
}

// Put inserts e or replaces the existing entry for the same (root, path).
func (r HashPerfRepo) Put(ctx context.Context, e ir.HashPerfEntry) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO hashperf (absroot, path, time) VALUES (?, ?, ?)
		ON CONFLICT(absroot, path) DO UPDATE SET time = excluded.time
	`, string(e.Root), e.Path, e.Seconds())
	if err != nil {
		return fmt.Errorf("put hashperf: %w", err)
	}
	return nil
}

// Delete removes the entry for (root, path).
func (r HashPerfRepo) Delete(ctx context.Context, root ir.RootID, path string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM hashperf WHERE absroot = ? AND path = ?`, string(root), path); err != nil {
		return fmt.Errorf("delete hashperf: %w", err)
	}
	return nil
}

// List returns all entries, slowest first.
func (r HashPerfRepo) List(ctx context.Context) ([]ir.HashPerfEntry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT absroot, path, time FROM hashperf
		ORDER BY time DESC, absroot COLLATE BINARY ASC, path COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query hashperf: %w", err)
	}
	defer rows.Close()

	entries := []ir.HashPerfEntry{}
	for rows.Next() {
		e, err := scanHashPerf(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hashperf: %w", err)
	}
	return entries, nil
}

// AdoptLegacy attributes entries written before multi-root support to root.
func (r HashPerfRepo) AdoptLegacy(ctx context.Context, root ir.RootID) error {
	if _, err := r.q.ExecContext(ctx, `UPDATE hashperf SET absroot = ? WHERE absroot = ''`, string(root)); err != nil {
		return fmt.Errorf("adopt legacy hashperf: %w", err)
	}
	return nil
}

func scanHashPerf(row rowScanner) (ir.HashPerfEntry, error) {
	var e ir.HashPerfEntry
	var root string
	var secs float64
	if err := row.Scan(&root, &e.Path, &secs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.HashPerfEntry{}, err
		}
		return ir.HashPerfEntry{}, fmt.Errorf("scan hashperf: %w", err)
	}
	e.Root = ir.RootID(root)
	e.Elapsed = time.Duration(secs * float64(time.Second))
	return e, nil
}
