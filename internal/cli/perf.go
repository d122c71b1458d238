package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/hashfold/internal/ir"
)

// NewPerfCommand creates the perf command.
func NewPerfCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "perf",
		Short: "Show the slowest big-file hash times and ledger metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPerf(cmd, rootOpts)
		},
	}
}

type perfReport struct {
	Metadata         map[string]string  `json:"metadata"`
	Sequence         int64              `json:"sequence"`
	BigFileThreshold int64              `json:"big_file_threshold"`
	MaxPerfEntries   int                `json:"max_perf_entries"`
	HashPerf         []ir.HashPerfEntry `json:"hashperf"`
}

func runPerf(cmd *cobra.Command, opts *RootOptions) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.ledger.HashPerf(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "perf failed", err)
	}
	meta, err := a.ledger.Metadata(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "perf failed", err)
	}

	report := perfReport{
		Metadata:         meta,
		Sequence:         a.ledger.Sequence(),
		BigFileThreshold: a.ledger.BigFileThreshold(),
		MaxPerfEntries:   a.ledger.MaxPerfEntries(),
		HashPerf:         entries,
	}
	return a.out.Success(report, func(w io.Writer) {
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s: %s\n", k, meta[k])
		}
		fmt.Fprintf(w, "sequence: %d\n", report.Sequence)
		fmt.Fprintf(w, "big file threshold: %d bytes\n", report.BigFileThreshold)
		fmt.Fprintf(w, "hash perf entries: %d/%d\n", len(entries), report.MaxPerfEntries)
		for _, e := range entries {
			fmt.Fprintf(w, "%10.3fs  %s\n", e.Seconds(), ir.AbsPath(e.Root, e.Path))
		}
	})
}
