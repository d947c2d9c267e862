// Command sunbeam-migrate is the CLI surface over the migration core
// (spec §1: "Out of scope, treated as external collaborators: the
// command-line surface"). It parses arguments, loads configuration, wires
// the Ledger/Registry/Orchestrator, and formats output; all migration
// semantics live in internal/orchestrate.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "sunbeam-migrate",
	Short:         "Migrate resources between two OpenStack-style cloud control planes",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
