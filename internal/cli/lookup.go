package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/hashfold/internal/ir"
	"github.com/roach88/hashfold/internal/ledger"
)

// LookupOptions holds flags for the lookup command.
type LookupOptions struct {
	*RootOptions
	History bool
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lookup <root> <path>",
		Short: "Show the recorded state of a file",
		Long: `Show the last recorded state of a file, or with --history every
state recorded for it. The path is relative to the root.

Example:
  hashfold lookup ~/Pictures 2023/beach.jpg --history`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&opts.History, "history", false, "show every recorded state")

	return cmd
}

func runLookup(cmd *cobra.Command, opts *LookupOptions, root, rel string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx, cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.close()

	id, err := a.register(ctx, root)
	if err != nil {
		return err
	}

	var events []ir.FileEvent
	if opts.History {
		events, err = a.ledger.History(ctx, id, rel)
	} else {
		var ev ir.FileEvent
		ev, err = a.ledger.Lookup(ctx, id, rel)
		events = []ir.FileEvent{ev}
	}
	if errors.Is(err, ledger.ErrNotFound) {
		return WrapExitError(ExitFailure, "not in ledger", err)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "lookup failed", err)
	}

	return a.out.Success(events, func(w io.Writer) {
		for _, ev := range events {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
				ev.Seq, ev.Hash, ev.Size, ev.ModTime.Format(time.RFC3339), ev.Path)
		}
	})
}
