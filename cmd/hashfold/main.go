// Command hashfold records file content hashes in a local ledger and plans
// merges between directory trees.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/hashfold/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hashfold:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
