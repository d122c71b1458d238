package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CommonRepo reads and writes process-wide key/value metadata.
type CommonRepo struct {
	q Querier
}

// Common returns a CommonRepo over q.
func Common(q Querier) CommonRepo { return CommonRepo{q: q} }

// Get returns the value for key and whether it was present.
func (r CommonRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var val string
	err := r.q.QueryRowContext(ctx, `SELECT val FROM common WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get common %q: %w", key, err)
	}
	return val, true, nil
}

// Set writes key, replacing any previous value.
func (r CommonRepo) Set(ctx context.Context, key, val string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO common (key, val) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET val = excluded.val
	`, key, val)
	if err != nil {
		return fmt.Errorf("set common %q: %w", key, err)
	}
	return nil
}

// SetIfAbsent writes key only if it has no value yet.
func (r CommonRepo) SetIfAbsent(ctx context.Context, key, val string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO common (key, val) VALUES (?, ?)
		ON CONFLICT(key) DO NOTHING
	`, key, val)
	if err != nil {
		return fmt.Errorf("set common %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (r CommonRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM common WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete common %q: %w", key, err)
	}
	return nil
}

// All returns every key/value pair.
func (r CommonRepo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT key, val FROM common`)
	if err != nil {
		return nil, fmt.Errorf("query common: %w", err)
	}
	defer rows.Close()

	all := map[string]string{}
	for rows.Next() {
		var key, val string
		if err := rows.Scan(&key, &val); err != nil {
			return nil, fmt.Errorf("scan common: %w", err)
		}
		all[key] = val
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate common: %w", err)
	}
	return all, nil
}
