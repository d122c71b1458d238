package merge

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/hashfold/internal/ledger"
	"github.com/roach88/hashfold/internal/probe"
	"github.com/roach88/hashfold/internal/store"
	"github.com/roach88/hashfold/internal/testutil"
)

const testRunID = "0192f3a4-5b6c-7d8e-9f00-112233445566"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestLedger opens a ledger over a fresh store outside both trees.
func createTestLedger(t *testing.T, opts ...ledger.Option) *ledger.Ledger {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	base := []ledger.Option{ledger.WithProbe(probe.Static{}), ledger.WithLogger(quietLogger())}
	l, err := ledger.Open(context.Background(), st, append(base, opts...)...)
	require.NoError(t, err)
	return l
}

// fourOutcomeTrees builds a source and destination that yield one file of
// each outcome.
func fourOutcomeTrees(t *testing.T) (src, dst string) {
	t.Helper()
	src = t.TempDir()
	dst = t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"src/a.txt": "a",
		"b.txt":     "b",
		"c.txt":     "c",
		"d.txt":     "d",
	})
	testutil.WriteTree(t, dst, map[string]string{
		"src/a.txt":   "a",
		"b.txt":       "not b",
		"moved/c.txt": "c",
	})
	return src, dst
}

// normalizePlan replaces the temporary roots so plans compare stably.
func normalizePlan(plan, src, dst string) string {
	plan = strings.ReplaceAll(plan, src, "$SRC")
	return strings.ReplaceAll(plan, dst, "$DST")
}
