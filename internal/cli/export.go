package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/hashfold/internal/compression"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out   string
	Level int
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the whole event log as newline-delimited JSON",
		Long: `Write every recorded file event, oldest first, one JSON object per line.
Output ending in .zst is zstd-compressed.

Example:
  hashfold export --out ledger-2024.ndjson.zst`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (required)")
	cmd.Flags().IntVar(&opts.Level, "level", 2, "zstd level: 1 fastest, 2 default, 3 better")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) (err error) {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx, cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.close()

	f, err := os.Create(opts.Out)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot create export file", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = WrapExitError(ExitFailure, "export failed", closeErr)
		}
	}()

	var w io.Writer = f
	var zw io.WriteCloser
	if compression.IsCompressedName(opts.Out) {
		zw, err = compression.NewWriter(f, opts.Level)
		if err != nil {
			return WrapExitError(ExitFailure, "export failed", err)
		}
		w = zw
	}

	n, err := a.ledger.Export(ctx, w)
	if err != nil {
		return WrapExitError(ExitFailure, "export failed", err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return WrapExitError(ExitFailure, "export failed", err)
		}
	}

	result := map[string]any{"path": opts.Out, "events": n}
	return a.out.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "exported %d events to %s\n", n, opts.Out)
	})
}
