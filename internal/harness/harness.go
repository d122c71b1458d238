package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/hashfold/internal/ir"
	"github.com/roach88/hashfold/internal/ledger"
	"github.com/roach88/hashfold/internal/merge"
	"github.com/roach88/hashfold/internal/probe"
	"github.com/roach88/hashfold/internal/store"
	"github.com/roach88/hashfold/internal/testutil"
)

// RunID is the fixed run id of every scenario run.
const RunID = "00000000-0000-7000-8000-000000000000"

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool

	// Errors lists every failed expectation.
	Errors []string

	// Plan is the plan text with roots replaced by $SRC and $DST.
	Plan string

	// Report is the merge report.
	Report *merge.Report
}

// Run executes a scenario in dir, which must be an empty scratch directory.
// The ledger, both trees and all timestamps are created fresh.
func Run(ctx context.Context, dir string, s *Scenario) (*Result, error) {
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	for _, d := range []string{src, dst} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, err
		}
	}
	if err := writeTree(src, s.Source); err != nil {
		return nil, err
	}
	if err := writeTree(dst, s.Dest); err != nil {
		return nil, err
	}

	st, err := store.Open(filepath.Join(dir, "ledger.db"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewDeterministicClock()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l, err := ledger.Open(ctx, st,
		ledger.WithLogger(logger),
		ledger.WithNow(clock.Now),
		ledger.WithProbe(lockedProbe(src, s.Locked)),
	)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	var plan bytes.Buffer
	report, err := merge.NewRunner(l, src, dst, merge.ParseMode(s.Mode),
		merge.WithRunID(RunID),
		merge.WithVerbose(s.Verbose),
		merge.WithLogger(logger),
	).Run(ctx, &plan)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", s.Name, err)
	}

	text := strings.ReplaceAll(plan.String(), src, "$SRC")
	text = strings.ReplaceAll(text, dst, "$DST")
	result := &Result{Plan: filepath.ToSlash(text), Report: report}
	result.Errors = check(s.Expect, report)
	result.Pass = len(result.Errors) == 0
	return result, nil
}

func writeTree(root string, files map[string]string) error {
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func lockedProbe(src string, locked []string) probe.Probe {
	held := map[string]bool{}
	for _, rel := range locked {
		held[ir.AbsPath(ir.RootID(src), rel)] = true
	}
	return probe.Static{Locked: func(path string) bool { return held[path] }}
}

// check compares a report against the expectation.
func check(want Expectation, report *merge.Report) []string {
	var errs []string

	got := map[string]string{}
	for _, r := range report.Results {
		got[r.Path] = r.Name
	}
	for path, name := range want.Outcomes {
		if got[path] != name {
			errs = append(errs, fmt.Sprintf("%s: outcome %q, want %q", path, got[path], name))
		}
	}

	for name, n := range want.Counts {
		if report.Counts[name] != n {
			errs = append(errs, fmt.Sprintf("count %s: %d, want %d", name, report.Counts[name], n))
		}
	}

	skipped := slices.Clone(report.Skipped)
	expected := slices.Clone(want.Skipped)
	slices.Sort(skipped)
	slices.Sort(expected)
	if !slices.Equal(skipped, expected) {
		errs = append(errs, fmt.Sprintf("skipped %v, want %v", skipped, expected))
	}
	return errs
}
