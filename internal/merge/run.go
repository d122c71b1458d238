package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/roach88/hashfold/internal/ir"
	"github.com/roach88/hashfold/internal/ledger"
	"github.com/roach88/hashfold/internal/metrics"
	"github.com/roach88/hashfold/internal/walker"
)

// RunLedger is the ledger surface a merge run uses.
type RunLedger interface {
	Ledger
	Register(ctx context.Context, root string) (ir.RootID, error)
	Scan(ctx context.Context, root ir.RootID) (ledger.ScanSummary, error)
}

// Report summarises a merge run.
type Report struct {
	RunID   string         `json:"run_id"`
	Mode    string         `json:"mode"`
	Source  string         `json:"source"`
	Dest    string         `json:"dest"`
	Counts  map[string]int `json:"counts"`
	Skipped []string       `json:"skipped,omitempty"`
	Results []Result       `json:"results"`
}

// Count returns how many files were classified as o.
func (r *Report) Count(o Outcome) int {
	return r.Counts[o.String()]
}

func (r *Report) add(res Result) {
	r.Counts[res.Outcome.String()]++
	r.Results = append(r.Results, res)
}

// Runner executes one merge of a source root into a destination root.
type Runner struct {
	ledger  RunLedger
	source  string
	dest    string
	mode    Mode
	verbose bool
	runID   string
	enum    walker.Enumerator
	log     *slog.Logger
	metrics *metrics.Metrics
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithVerbose adds the run header to the plan.
func WithVerbose(v bool) RunnerOption {
	return func(r *Runner) { r.verbose = v }
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) RunnerOption {
	return func(r *Runner) { r.runID = id }
}

// WithEnumerator sets how the source tree is walked.
func WithEnumerator(e walker.Enumerator) RunnerOption {
	return func(r *Runner) { r.enum = e }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMetrics sets the metrics sink for outcome counts.
func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner returns a Runner merging source into dest.
func NewRunner(l RunLedger, source, dest string, mode Mode, opts ...RunnerOption) *Runner {
	r := &Runner{
		ledger: l,
		source: source,
		dest:   dest,
		mode:   mode,
		enum:   walker.New(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = uuid.Must(uuid.NewV7()).String()
	}
	return r
}

// Run classifies every source file and writes the plan to w. The mode and
// both roots are checked before anything is recorded. The destination is
// scanned in full first so content found elsewhere in it is known.
func (r *Runner) Run(ctx context.Context, w io.Writer) (*Report, error) {
	if !r.mode.Valid() {
		return nil, NewInvalidModeError(r.mode)
	}
	if err := CheckRoots(r.source, r.dest); err != nil {
		return nil, err
	}

	src, err := r.ledger.Register(ctx, r.source)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	dst, err := r.ledger.Register(ctx, r.dest)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	host, _ := os.Hostname()
	r.log.Info("merge started",
		"run", r.runID,
		"mode", r.mode.String(),
		"computer", host,
		"source", string(src),
		"dest", string(dst),
	)

	if _, err := r.ledger.Scan(ctx, dst); err != nil {
		return nil, fmt.Errorf("merge: scan dest: %w", err)
	}

	report := &Report{
		RunID:   r.runID,
		Mode:    r.mode.String(),
		Source:  string(src),
		Dest:    string(dst),
		Counts:  map[string]int{},
		Results: []Result{},
	}
	for _, o := range Outcomes {
		report.Counts[o.String()] = 0
	}

	planner := NewPlanner(w, r.mode)
	if r.verbose {
		if err := planner.Header(r.runID, string(src), string(dst)); err != nil {
			return nil, fmt.Errorf("merge: write plan: %w", err)
		}
	}

	classifier := NewClassifier(r.ledger, src, dst)
	for rel, err := range r.enum.Paths(string(src)) {
		if err != nil {
			return report, fmt.Errorf("merge: walk source: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res, err := classifier.Compare(ctx, rel)
		if errors.Is(err, ErrNotAccessible) {
			r.log.Warn("source not accessible, skipping", "path", res.Source)
			report.Skipped = append(report.Skipped, rel)
			if err := planner.Skip(res.Source, res.Dest); err != nil {
				return report, fmt.Errorf("merge: write plan: %w", err)
			}
			continue
		}
		if err != nil {
			return report, fmt.Errorf("merge: %w", err)
		}

		report.add(res)
		r.metrics.Outcome(res.Name)
		if err := planner.Write(res); err != nil {
			return report, fmt.Errorf("merge: write plan: %w", err)
		}
	}

	if err := planner.Flush(); err != nil {
		return report, fmt.Errorf("merge: write plan: %w", err)
	}
	r.log.Info("merge complete",
		"run", r.runID,
		"exact", report.Count(OutcomeExact),
		"conflict", report.Count(OutcomeConflict),
		"elsewhere", report.Count(OutcomeElsewhere),
		"absent", report.Count(OutcomeAbsent),
		"skipped", len(report.Skipped),
	)
	return report, nil
}

// CheckRoots returns a ROOT_NOT_FOUND error unless both source and dest are
// existing directories.
func CheckRoots(source, dest string) error {
	if err := requireDir("source", source); err != nil {
		return err
	}
	return requireDir("dest", dest)
}

func requireDir(role, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return NewRootNotFoundError(role, path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return NewRootNotFoundError(role, abs, err)
	}
	if !info.IsDir() {
		return NewRootNotFoundError(role, abs, errors.New("not a directory"))
	}
	return nil
}
