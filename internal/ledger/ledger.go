package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/hashfold/internal/hasher"
	"github.com/roach88/hashfold/internal/hashperf"
	"github.com/roach88/hashfold/internal/ir"
	"github.com/roach88/hashfold/internal/metrics"
	"github.com/roach88/hashfold/internal/probe"
	"github.com/roach88/hashfold/internal/store"
	"github.com/roach88/hashfold/internal/walker"
)

// Ledger records file state for registered roots.
type Ledger struct {
	st      *store.Store
	hasher  hasher.Hasher
	probe   probe.Probe
	enum    walker.Enumerator
	perf    *hashperf.Cache
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time

	bigFileThreshold int64
	onRecord         func(ir.RootID, string, RecordStatus)

	clock   *Clock
	current map[ir.PathKey]int64
	roots   map[ir.RootID]struct{}
}

// Open builds a Ledger over an open store: it writes the common metadata and
// loads the current-state index.
func Open(ctx context.Context, st *store.Store, opts ...Option) (*Ledger, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	l := &Ledger{
		st:               st,
		hasher:           o.Hasher,
		probe:            o.Probe,
		enum:             o.Enumerator,
		perf:             hashperf.New(o.MaxPerfEntries),
		metrics:          o.Metrics,
		log:              o.Logger,
		now:              o.Now,
		bigFileThreshold: o.BigFileThreshold,
		onRecord:         o.OnRecord,
	}

	if err := l.writeCommon(ctx); err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := l.loadIndex(ctx); err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	removed, err := l.perf.Trim(ctx, l.st.HashPerf())
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if removed > 0 {
		l.log.Info("trimmed hash perf table", "removed", removed, "capacity", l.perf.Capacity())
	}
	return l, nil
}

// Store returns the backing store.
func (l *Ledger) Store() *store.Store { return l.st }

// BigFileThreshold returns the size at which hash timings are tracked.
func (l *Ledger) BigFileThreshold() int64 { return l.bigFileThreshold }

// MaxPerfEntries returns the capacity of the hash performance table.
func (l *Ledger) MaxPerfEntries() int { return l.perf.Capacity() }

// Sequence returns the last event sequence handed out.
func (l *Ledger) Sequence() int64 { return l.clock.Current() }

// writeCommon records the machine identity and update time. The ledger id
// is only written once, when the store is new.
func (l *Ledger) writeCommon(ctx context.Context) error {
	machine, err := os.Hostname()
	if err != nil {
		machine = "unknown"
	}
	values := map[string]string{
		ir.CommonProcessor:  fmt.Sprintf("%s/%d", runtime.GOARCH, runtime.NumCPU()),
		ir.CommonMachine:    machine,
		ir.CommonUpdateTime: l.timestamp(),
	}

	common := l.st.Common()
	for k, v := range values {
		if err := common.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return common.SetIfAbsent(ctx, ir.CommonLedgerID, uuid.Must(uuid.NewV7()).String())
}

// loadIndex rebuilds the in-memory current-state index, the root set and the
// sequence clock from the store.
func (l *Ledger) loadIndex(ctx context.Context) error {
	current, err := l.st.Files().CurrentSeqs(ctx)
	if err != nil {
		return err
	}
	maxSeq, err := l.st.Files().MaxSeq(ctx)
	if err != nil {
		return err
	}
	roots, err := l.st.Roots().List(ctx)
	if err != nil {
		return err
	}

	l.current = current
	l.clock = NewClockAt(maxSeq)
	l.roots = make(map[ir.RootID]struct{}, len(roots))
	for _, r := range roots {
		l.roots[r] = struct{}{}
	}
	return nil
}

// reinitialize drops all ledger data and starts over with an empty store.
func (l *Ledger) reinitialize(ctx context.Context) error {
	if err := l.st.Reinitialize(ctx); err != nil {
		return err
	}
	if err := l.writeCommon(ctx); err != nil {
		return err
	}
	return l.loadIndex(ctx)
}

func (l *Ledger) timestamp() string {
	return l.now().UTC().Format(time.RFC3339Nano)
}

// HashPerf returns the hash performance table, slowest first.
func (l *Ledger) HashPerf(ctx context.Context) ([]ir.HashPerfEntry, error) {
	return l.st.HashPerf().List(ctx)
}

// Metadata returns the common key/value metadata.
func (l *Ledger) Metadata(ctx context.Context) (map[string]string, error) {
	return l.st.Common().All(ctx)
}
