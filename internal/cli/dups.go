package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewDupsCommand creates the dups command.
func NewDupsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dups <root>",
		Short: "List files under a root that share content",
		Long: `Scan a root and list every group of two or more files with identical
content, largest first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDups(cmd, rootOpts, args[0])
		},
	}
}

func runDups(cmd *cobra.Command, opts *RootOptions, root string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer a.close()

	id, err := a.register(ctx, root)
	if err != nil {
		return err
	}
	if _, err := a.ledger.Scan(ctx, id); err != nil {
		return WrapExitError(ExitFailure, "scan failed", err)
	}
	groups, err := a.ledger.Duplicates(ctx, id)
	if err != nil {
		return WrapExitError(ExitFailure, "dups failed", err)
	}

	return a.out.Success(groups, func(w io.Writer) {
		for _, g := range groups {
			fmt.Fprintf(w, "%s %d\n", g.Hash, g.Size)
			for _, p := range g.Paths {
				fmt.Fprintf(w, "  %s\n", p)
			}
		}
	})
}
