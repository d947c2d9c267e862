package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd archives a record (§4.A "delete"/"restore"): archived records
// are hidden from default `list` output (`show` by uuid still returns
// them) and excluded from the
// active-migrated uniqueness invariant, but never hard-removed from the
// Ledger by this command.
var deleteCmd = &cobra.Command{
	Use:   "delete MIGRATION_UUID",
	Short: "Archive a migration record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.Archive(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "archived %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
