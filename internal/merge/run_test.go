package merge

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hashfold/internal/ledger"
	"github.com/roach88/hashfold/internal/metrics"
	"github.com/roach88/hashfold/internal/probe"
	"github.com/roach88/hashfold/internal/testutil"
)

func runPlan(t *testing.T, mode Mode, opts ...RunnerOption) (string, *Report, string, string) {
	t.Helper()
	src, dst := fourOutcomeTrees(t)
	l := createTestLedger(t)

	var buf bytes.Buffer
	opts = append([]RunnerOption{WithLogger(quietLogger()), WithRunID(testRunID)}, opts...)
	report, err := NewRunner(l, src, dst, mode, opts...).Run(context.Background(), &buf)
	require.NoError(t, err)
	return buf.String(), report, src, dst
}

func TestRun_CopyPlanGolden(t *testing.T) {
	plan, _, src, dst := runPlan(t, ModeCopy, WithVerbose(true))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "copy_plan", []byte(normalizePlan(plan, src, dst)))
}

func TestRun_MovePlanGolden(t *testing.T) {
	plan, _, src, dst := runPlan(t, ModeMove)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "move_plan", []byte(normalizePlan(plan, src, dst)))
}

func TestRun_ReportCountsEachOutcome(t *testing.T) {
	_, report, src, dst := runPlan(t, ModeCopy)

	assert.Equal(t, testRunID, report.RunID)
	assert.Equal(t, "copy", report.Mode)
	assert.Equal(t, src, report.Source)
	assert.Equal(t, dst, report.Dest)
	for _, o := range Outcomes {
		assert.Equal(t, 1, report.Count(o), o.String())
	}
	require.Len(t, report.Results, 4)
	assert.Equal(t, []string{"moved/c.txt"}, report.Results[1].Elsewhere)
}

func TestRun_AnalyzeWritesNothingAndTouchesNothing(t *testing.T) {
	src, dst := fourOutcomeTrees(t)
	before := [][]string{testutil.Snapshot(t, src), testutil.Snapshot(t, dst)}
	l := createTestLedger(t)

	var buf bytes.Buffer
	report, err := NewRunner(l, src, dst, ModeAnalyze,
		WithLogger(quietLogger()),
		WithVerbose(true),
	).Run(context.Background(), &buf)
	require.NoError(t, err)

	assert.Empty(t, buf.String())
	assert.Equal(t, "finddup", report.Mode)
	assert.Len(t, report.Results, 4)
	assert.Equal(t, before, [][]string{testutil.Snapshot(t, src), testutil.Snapshot(t, dst)})
}

func TestRun_CopyPlanLeavesTreesUntouched(t *testing.T) {
	src, dst := fourOutcomeTrees(t)
	before := [][]string{testutil.Snapshot(t, src), testutil.Snapshot(t, dst)}

	var buf bytes.Buffer
	_, err := NewRunner(createTestLedger(t), src, dst, ModeMove, WithLogger(quietLogger())).
		Run(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, before, [][]string{testutil.Snapshot(t, src), testutil.Snapshot(t, dst)})
}

func TestRun_SecondRunHashesNothingNew(t *testing.T) {
	src, dst := fourOutcomeTrees(t)
	l := createTestLedger(t)
	ctx := context.Background()

	_, err := NewRunner(l, src, dst, ModeCopy, WithLogger(quietLogger())).Run(ctx, &bytes.Buffer{})
	require.NoError(t, err)
	n, err := l.Store().Files().Count(ctx)
	require.NoError(t, err)

	_, err = NewRunner(l, src, dst, ModeCopy, WithLogger(quietLogger())).Run(ctx, &bytes.Buffer{})
	require.NoError(t, err)
	n2, err := l.Store().Files().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, n2)
}

func TestRun_InvalidModeFailsFirst(t *testing.T) {
	l := createTestLedger(t)
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := NewRunner(l, missing, missing, ModeUndefined).Run(context.Background(), &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, IsInvalidMode(err))
	assert.False(t, IsRootNotFound(err))

	roots, err := l.Roots(context.Background())
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestRun_MissingRoot(t *testing.T) {
	l := createTestLedger(t)
	existing := t.TempDir()
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := NewRunner(l, missing, existing, ModeCopy).Run(context.Background(), &bytes.Buffer{})
	assert.True(t, IsRootNotFound(err))

	_, err = NewRunner(l, existing, missing, ModeCopy).Run(context.Background(), &bytes.Buffer{})
	assert.True(t, IsRootNotFound(err))
	assert.Contains(t, err.Error(), "ROOT_NOT_FOUND")

	roots, err := l.Roots(context.Background())
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestCheckRoots(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.NoError(t, CheckRoots(dir, dir))

	err := CheckRoots(file, dir)
	require.True(t, IsRootNotFound(err))
	assert.Contains(t, err.Error(), "source")

	err = CheckRoots(dir, filepath.Join(dir, "missing"))
	require.True(t, IsRootNotFound(err))
	assert.Contains(t, err.Error(), "dest")
}

func TestRun_HonoursCancellation(t *testing.T) {
	src, dst := fourOutcomeTrees(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(createTestLedger(t), src, dst, ModeCopy, WithLogger(quietLogger())).
		Run(ctx, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_LockedSourceIsSkipped(t *testing.T) {
	src, dst := fourOutcomeTrees(t)
	l := createTestLedger(t, ledger.WithProbe(probe.Static{
		Locked: func(p string) bool { return strings.HasPrefix(p, src) && strings.HasSuffix(p, "d.txt") },
	}))

	var buf bytes.Buffer
	report, err := NewRunner(l, src, dst, ModeCopy, WithLogger(quietLogger())).Run(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"d.txt"}, report.Skipped)
	assert.Zero(t, report.Count(OutcomeAbsent))
	assert.Contains(t, normalizePlan(buf.String(), src, dst), "REM not_accessible $SRC/d.txt $DST/d.txt\n")
}

func TestRun_RecordsOutcomeMetrics(t *testing.T) {
	m := metrics.New()
	_, _, _, _ = runPlan(t, ModeCopy, WithMetrics(m))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var total float64
	for _, f := range families {
		if f.GetName() == "hashfold_merge_outcomes_total" {
			for _, metric := range f.GetMetric() {
				total += metric.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 4.0, total)
}

func TestOpenPlanFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.txt")
	f, err := OpenPlanFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, err = os.Stat(path)
	assert.NoError(t, err)

	_, err = OpenPlanFile(filepath.Join(t.TempDir(), "missing", "plan.txt"))
	assert.True(t, IsOutputOpenFailed(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
