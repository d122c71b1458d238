package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/hashfold/internal/ir"
)

const fileColumns = `sequence, absroot, path, sha512, size, mtime, hidden, system`

// FileRepo reads and appends file events. It has no update or delete: the
// event log only grows.
type FileRepo struct {
	q Querier
}

// Files returns a FileRepo over q.
func Files(q Querier) FileRepo { return FileRepo{q: q} }

// Append inserts ev. The caller assigns ev.Seq; a duplicate sequence is an
// error.
func (r FileRepo) Append(ctx context.Context, ev ir.FileEvent) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO files (`+fileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ev.Seq,
		string(ev.Root),
		ev.Path,
		ev.Hash,
		ev.Size,
		ev.ModTime.UTC().UnixNano(),
		ev.Hidden,
		ev.System,
	)
	if err != nil {
		return fmt.Errorf("append file event: %w", err)
	}
	return nil
}

// BySeq retrieves a single event by sequence.
// Returns sql.ErrNoRows if not found.
func (r FileRepo) BySeq(ctx context.Context, seq int64) (ir.FileEvent, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE sequence = ?`, seq)
	return scanFileEvent(row)
}

// History returns every event for (root, path) in sequence order.
func (r FileRepo) History(ctx context.Context, root ir.RootID, path string) ([]ir.FileEvent, error) {
	return r.queryEvents(ctx, `
		SELECT `+fileColumns+` FROM files
		WHERE absroot = ? AND path = ?
		ORDER BY sequence ASC
	`, string(root), path)
}

// ByHash returns every event under root carrying hash, current or not, in
// sequence order.
func (r FileRepo) ByHash(ctx context.Context, root ir.RootID, hash string) ([]ir.FileEvent, error) {
	return r.queryEvents(ctx, `
		SELECT `+fileColumns+` FROM files
		WHERE absroot = ? AND sha512 = ?
		ORDER BY sequence ASC
	`, string(root), hash)
}

// Current returns the current-state event of every path under root, ordered
// by path.
func (r FileRepo) Current(ctx context.Context, root ir.RootID) ([]ir.FileEvent, error) {
	return r.queryEvents(ctx, `
		SELECT f.sequence, f.absroot, f.path, f.sha512, f.size, f.mtime, f.hidden, f.system
		FROM files f
		JOIN (
			SELECT MAX(sequence) AS seq FROM files
			WHERE absroot = ?
			GROUP BY path
		) cur ON f.sequence = cur.seq
		ORDER BY f.path COLLATE BINARY ASC
	`, string(root))
}

// CurrentSeqs maps every known (root, path) to its greatest sequence.
func (r FileRepo) CurrentSeqs(ctx context.Context) (map[ir.PathKey]int64, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT absroot, path, MAX(sequence) FROM files
		GROUP BY absroot, path
	`)
	if err != nil {
		return nil, fmt.Errorf("query current sequences: %w", err)
	}
	defer rows.Close()

	seqs := map[ir.PathKey]int64{}
	for rows.Next() {
		var root, path string
		var seq int64
		if err := rows.Scan(&root, &path, &seq); err != nil {
			return nil, fmt.Errorf("scan current sequence: %w", err)
		}
		seqs[ir.PathKey{Root: ir.RootID(root), Path: path}] = seq
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate current sequences: %w", err)
	}
	return seqs, nil
}

// MaxSeq returns the greatest sequence in the log, or 0 when it is empty.
func (r FileRepo) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(sequence), 0) FROM files`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("max sequence: %w", err)
	}
	return seq, nil
}

// Count returns the number of events in the log.
func (r FileRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count file events: %w", err)
	}
	return n, nil
}

// ForEach calls fn for every event in sequence order, stopping at the first
// error.
func (r FileRepo) ForEach(ctx context.Context, fn func(ir.FileEvent) error) error {
	rows, err := r.q.QueryContext(ctx, `SELECT `+fileColumns+` FROM files ORDER BY sequence ASC`)
	if err != nil {
		return fmt.Errorf("query file events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		ev, err := scanFileEvent(rows)
		if err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate file events: %w", err)
	}
	return nil
}

// AdoptLegacy attributes rows written before multi-root support to root.
func (r FileRepo) AdoptLegacy(ctx context.Context, root ir.RootID) (int64, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE files SET absroot = ? WHERE absroot = ''`, string(root))
	if err != nil {
		return 0, fmt.Errorf("adopt legacy files: %w", err)
	}
	return res.RowsAffected()
}

func (r FileRepo) queryEvents(ctx context.Context, query string, args ...any) ([]ir.FileEvent, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query file events: %w", err)
	}
	defer rows.Close()

	events := []ir.FileEvent{}
	for rows.Next() {
		ev, err := scanFileEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file events: %w", err)
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanFileEvent scans a row into a FileEvent. sql.ErrNoRows is returned
// unwrapped so callers can test for it directly.
func scanFileEvent(row rowScanner) (ir.FileEvent, error) {
	var ev ir.FileEvent
	var root string
	var mtime int64
	err := row.Scan(&ev.Seq, &root, &ev.Path, &ev.Hash, &ev.Size, &mtime, &ev.Hidden, &ev.System)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.FileEvent{}, err
		}
		return ir.FileEvent{}, fmt.Errorf("scan file event: %w", err)
	}
	ev.Root = ir.RootID(root)
	ev.ModTime = time.Unix(0, mtime).UTC()
	return ev, nil
}
