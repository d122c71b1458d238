package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/hashfold/internal/ledger"
)

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <root>...",
		Short: "Record the current state of every file under each root",
		Long: `Walk each root and record every regular file in the ledger.

Files whose size and modification time match their last recorded state are
not rehashed. Files locked by another process are skipped.

Example:
  hashfold scan ~/Pictures /mnt/backup/Pictures`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, rootOpts, args)
		},
	}
}

func runScan(cmd *cobra.Command, opts *RootOptions, roots []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	prog := newProgress(cmd.ErrOrStderr())
	a, err := openApp(ctx, cmd, opts, ledger.WithOnRecord(prog.onRecord))
	if err != nil {
		return err
	}
	defer a.close()

	summaries := make([]ledger.ScanSummary, 0, len(roots))
	for _, root := range roots {
		id, err := a.register(ctx, root)
		if err != nil {
			return err
		}
		a.out.VerboseLog("scanning %s", id)
		summary, err := a.ledger.Scan(ctx, id)
		prog.done()
		if err != nil {
			return WrapExitError(ExitFailure, "scan failed", err)
		}
		summaries = append(summaries, summary)
	}

	return a.out.Success(summaries, func(w io.Writer) {
		for _, s := range summaries {
			fmt.Fprintf(w, "%s: %d recorded, %d unchanged, %d locked\n",
				s.Root, s.Recorded, s.Unchanged, s.Locked)
		}
	})
}
