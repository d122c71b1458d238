package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/roach88/hashfold/internal/ir"
	"github.com/roach88/hashfold/internal/store"
)

// RecordStatus is the result of recording one file.
type RecordStatus int

const (
	// StatusRecorded means a new event was appended.
	StatusRecorded RecordStatus = iota
	// StatusUnchanged means the file matched its current event.
	StatusUnchanged
	// StatusLocked means the file was held by another process and skipped.
	StatusLocked
)

func (s RecordStatus) String() string {
	switch s {
	case StatusRecorded:
		return "recorded"
	case StatusUnchanged:
		return "unchanged"
	case StatusLocked:
		return "locked"
	default:
		return fmt.Sprintf("RecordStatus(%d)", int(s))
	}
}

// ScanSummary counts the outcome of a Scan.
type ScanSummary struct {
	Root      ir.RootID `json:"root"`
	Recorded  int       `json:"recorded"`
	Unchanged int       `json:"unchanged"`
	Locked    int       `json:"locked"`
}

// Total returns the number of files visited.
func (s ScanSummary) Total() int {
	return s.Recorded + s.Unchanged + s.Locked
}

func (s *ScanSummary) add(status RecordStatus) {
	switch status {
	case StatusRecorded:
		s.Recorded++
	case StatusUnchanged:
		s.Unchanged++
	case StatusLocked:
		s.Locked++
	}
}

// Record brings the ledger up to date for one file. A file is unchanged when
// its size matches the current event and its mtime is within
// ModTimeTolerance of it; anything else is hashed and appended.
func (l *Ledger) Record(ctx context.Context, root ir.RootID, rel string) (RecordStatus, error) {
	if err := l.requireRoot(root); err != nil {
		return 0, err
	}
	rel = ir.RelPath(rel)
	abs := ir.AbsPath(root, rel)

	if l.probe.IsLocked(abs) {
		l.log.Debug("file locked, skipping", "root", string(root), "path", rel)
		l.metrics.Locked()
		return StatusLocked, nil
	}

	info, err := os.Stat(abs)
	if err != nil {
		return 0, fmt.Errorf("record %s: %w", abs, err)
	}
	size := info.Size()
	mtime := info.ModTime().UTC()

	key := ir.PathKey{Root: root, Path: rel}
	if seq, ok := l.current[key]; ok {
		prior, err := l.st.Files().BySeq(ctx, seq)
		if err != nil {
			return 0, fmt.Errorf("record %s: load current event: %w", abs, err)
		}
		if unchanged(prior, size, mtime) {
			l.log.Debug("file unchanged", "root", string(root), "path", rel)
			l.metrics.Unchanged()
			return StatusUnchanged, nil
		}
	}

	isBig := size >= l.bigFileThreshold
	hash, elapsed, err := l.hasher.Hash(ctx, abs, isBig)
	if err != nil {
		return 0, fmt.Errorf("record %s: %w", abs, err)
	}

	ev := ir.FileEvent{
		Root:    root,
		Path:    rel,
		Hash:    hash,
		Size:    size,
		ModTime: mtime,
		Hidden:  l.probe.IsHidden(abs),
		System:  l.probe.IsSystem(abs),
		Seq:     l.clock.Next(),
	}

	admitted := false
	err = l.st.WithTx(ctx, func(tx *sql.Tx) error {
		if err := store.Files(tx).Append(ctx, ev); err != nil {
			return err
		}
		if isBig {
			ok, err := l.perf.Observe(ctx, store.HashPerf(tx), ir.HashPerfEntry{
				Root:    root,
				Path:    rel,
				Elapsed: elapsed,
			})
			if err != nil {
				return err
			}
			admitted = ok
		}
		return store.Common(tx).Set(ctx, ir.CommonUpdateTime, l.timestamp())
	})
	if err != nil {
		return 0, fmt.Errorf("record %s: %w", abs, err)
	}

	l.current[key] = ev.Seq
	l.metrics.Recorded(size)
	if isBig {
		l.metrics.BigFileHashed(elapsed, admitted)
	}
	return StatusRecorded, nil
}

func unchanged(prior ir.FileEvent, size int64, mtime time.Time) bool {
	if prior.Size != size {
		return false
	}
	d := prior.ModTime.Sub(mtime)
	if d < 0 {
		d = -d
	}
	return d <= ModTimeTolerance
}

// Lookup returns the current-state event of a file. Unknown paths, and an
// empty path, return ErrNotFound.
func (l *Ledger) Lookup(ctx context.Context, root ir.RootID, rel string) (ir.FileEvent, error) {
	if strings.TrimSpace(rel) == "" {
		l.log.Warn("lookup of empty path", "root", string(root))
		return ir.FileEvent{}, fmt.Errorf("%w: empty path", ErrNotFound)
	}
	rel = ir.RelPath(rel)

	seq, ok := l.current[ir.PathKey{Root: root, Path: rel}]
	if !ok {
		l.log.Warn("file not in ledger", "root", string(root), "path", rel)
		return ir.FileEvent{}, fmt.Errorf("%w: %s", ErrNotFound, ir.AbsPath(root, rel))
	}

	ev, err := l.st.Files().BySeq(ctx, seq)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.FileEvent{}, fmt.Errorf("%w: %s", ErrNotFound, ir.AbsPath(root, rel))
	}
	if err != nil {
		return ir.FileEvent{}, fmt.Errorf("lookup %s: %w", rel, err)
	}
	return ev, nil
}

// History returns every event recorded for a file, oldest first.
func (l *Ledger) History(ctx context.Context, root ir.RootID, rel string) ([]ir.FileEvent, error) {
	rel = ir.RelPath(rel)
	events, err := l.st.Files().History(ctx, root, rel)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", rel, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ir.AbsPath(root, rel))
	}
	return events, nil
}

// Scan records every file the enumerator yields under root, in enumeration
// order. Cancellation is checked between files.
func (l *Ledger) Scan(ctx context.Context, root ir.RootID) (ScanSummary, error) {
	summary := ScanSummary{Root: root}
	if err := l.requireRoot(root); err != nil {
		return summary, err
	}

	for rel, err := range l.enum.Paths(string(root)) {
		if err != nil {
			return summary, fmt.Errorf("scan %s: %w", root, err)
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		status, err := l.Record(ctx, root, rel)
		if err != nil {
			return summary, err
		}
		summary.add(status)
		if l.onRecord != nil {
			l.onRecord(root, rel, status)
		}
	}

	l.log.Info("scan complete",
		"root", string(root),
		"recorded", summary.Recorded,
		"unchanged", summary.Unchanged,
		"locked", summary.Locked,
	)
	return summary, nil
}
