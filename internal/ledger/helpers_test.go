package ledger

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/hashfold/internal/hasher"
	"github.com/roach88/hashfold/internal/ir"
	"github.com/roach88/hashfold/internal/metrics"
	"github.com/roach88/hashfold/internal/probe"
	"github.com/roach88/hashfold/internal/store"
	"github.com/roach88/hashfold/internal/testutil"
)

// countingHasher wraps the real hasher, counts calls, and reports a fixed
// elapsed time for big files.
type countingHasher struct {
	inner   hasher.Hasher
	calls   int
	elapsed time.Duration
}

func (h *countingHasher) Hash(ctx context.Context, path string, isBig bool) (string, time.Duration, error) {
	h.calls++
	hash, _, err := h.inner.Hash(ctx, path, isBig)
	if err != nil || !isBig {
		return hash, 0, err
	}
	return hash, h.elapsed, nil
}

func newCountingHasher() *countingHasher {
	return &countingHasher{inner: hasher.NewSHA512(), elapsed: time.Second}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// createTestLedger opens a ledger over a fresh store with a static probe and
// a deterministic wall clock.
func createTestLedger(t *testing.T, opts ...Option) (*Ledger, *store.Store) {
	t.Helper()
	st := openTestStore(t)
	clock := testutil.NewDeterministicClock()
	base := []Option{
		WithProbe(probe.Static{}),
		WithLogger(quietLogger()),
		WithNow(clock.Now),
	}
	l, err := Open(context.Background(), st, append(base, opts...)...)
	require.NoError(t, err)
	return l, st
}

func registerTree(t *testing.T, l *Ledger, files map[string]string) ir.RootID {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteTree(t, dir, files)
	root, err := l.Register(context.Background(), dir)
	require.NoError(t, err)
	return root
}

// counterValue sums every sample of the named counter family.
func counterValue(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}
