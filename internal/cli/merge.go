package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/hashfold/internal/merge"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	*RootOptions
	Mode string
	Out  string
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "merge <source> <dest>",
		Short: "Plan merging a source tree into a destination tree",
		Long: `Classify every file under source against dest and write a plan.

Files missing from dest get a "copy" or "move" line; files already present at
the same path, present elsewhere in dest, or conflicting get a "REM" comment.
In analyze mode no plan is written and only the summary is reported.
Neither tree is modified.

Example:
  hashfold merge ~/phone-dump ~/Pictures --mode copy --out plan.txt
  hashfold merge ./a ./b --mode analyze --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "", "copy, move or analyze (required)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "plan file (default: stdout)")
	_ = cmd.MarkFlagRequired("mode")

	return cmd
}

func runMerge(cmd *cobra.Command, opts *MergeOptions, source, dest string) error {
	mode := merge.ParseMode(opts.Mode)
	if !mode.Valid() {
		return WrapExitError(ExitCommandError, "invalid mode", merge.NewInvalidModeError(mode))
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx, cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.close()

	// An existing plan file survives a run that cannot start.
	if err := merge.CheckRoots(source, dest); err != nil {
		return WrapExitError(ExitCommandError, "merge aborted", err)
	}

	planOut := cmd.OutOrStdout()
	summaryOut := a.out
	if opts.Out != "" {
		f, err := merge.OpenPlanFile(opts.Out)
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot write plan", err)
		}
		defer f.Close()
		planOut = f
	} else if mode != merge.ModeAnalyze {
		// the plan owns stdout
		summaryOut = &OutputFormatter{Format: a.out.Format, Writer: cmd.ErrOrStderr(), Verbose: a.out.Verbose}
	}

	runner := merge.NewRunner(a.ledger, source, dest, mode,
		merge.WithVerbose(opts.Verbose),
		merge.WithLogger(a.log),
		merge.WithMetrics(a.metrics),
		merge.WithEnumerator(walkerFor(a)),
	)
	report, err := runner.Run(ctx, planOut)
	if err != nil {
		if merge.IsInvalidMode(err) || merge.IsRootNotFound(err) || merge.IsOutputOpenFailed(err) {
			return WrapExitError(ExitCommandError, "merge aborted", err)
		}
		return WrapExitError(ExitFailure, "merge failed", err)
	}

	summary := map[string]any{
		"run_id":  report.RunID,
		"mode":    report.Mode,
		"source":  report.Source,
		"dest":    report.Dest,
		"counts":  report.Counts,
		"skipped": report.Skipped,
	}
	var data any = summary
	if mode == merge.ModeAnalyze {
		data = report
	}
	return summaryOut.Success(data, func(w io.Writer) {
		if mode == merge.ModeAnalyze {
			for _, r := range report.Results {
				fmt.Fprintf(w, "%s %s\n", r.Name, r.Source)
			}
		}
		for _, o := range merge.Outcomes {
			fmt.Fprintf(w, "%-16s %d\n", o.String(), report.Count(o))
		}
		if len(report.Skipped) > 0 {
			fmt.Fprintf(w, "%-16s %d\n", "not_accessible", len(report.Skipped))
		}
	})
}
