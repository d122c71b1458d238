package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ConfigPath  string
	Database    string
	MetricsFile string

	// viper carries flag and HASHFOLD_* environment overrides into the
	// config layer.
	viper *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the hashfold CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{viper: viper.New()}

	cmd := &cobra.Command{
		Use:   "hashfold",
		Short: "hashfold - content-addressed file ledger and merge planner",
		Long: `hashfold records the SHA-512 of every file under the directories you scan
in a local SQLite ledger, so later runs only rehash what changed.

With the ledger it can find files by content, list duplicates, and plan a
merge of one tree into another: every source file is classified as already
present, conflicting, present elsewhere, or missing, and the plan lists the
copy or move needed for the missing ones. Nothing is ever copied or moved by
hashfold itself.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logging")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/hashfold/config.yaml)")
	flags.StringVar(&opts.Database, "db", "", "ledger database (default: $XDG_DATA_HOME/hashfold/ledger.db)")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	_ = opts.viper.BindPFlag("ledger.path", flags.Lookup("db"))

	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewLookupCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewDupsCommand(opts))
	cmd.AddCommand(NewMergeCommand(opts))
	cmd.AddCommand(NewPerfCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
