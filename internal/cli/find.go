package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hashfold/internal/ir"
)

// FindOptions holds flags for the find command.
type FindOptions struct {
	*RootOptions
	Prefix string
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find <root> <sha512>",
		Short: "List files under a root whose current content has a hash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "only paths under this relative directory")

	return cmd
}

func runFind(cmd *cobra.Command, opts *FindOptions, root, hash string) error {
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
	paths, err := a.ledger.FindPaths(ctx, strings.ToLower(hash), id, opts.Prefix)
	if err != nil {
		return WrapExitError(ExitFailure, "find failed", err)
	}

	return a.out.Success(paths, func(w io.Writer) {
		for _, p := range paths {
			fmt.Fprintln(w, ir.AbsPath(id, p))
		}
	})
}
