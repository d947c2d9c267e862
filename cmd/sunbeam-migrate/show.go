package main

import "github.com/spf13/cobra"

var showCmd = &cobra.Command{
	Use:   "show MIGRATION_UUID",
	Short: "Show a single migration record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return writeRecord(cmd, rec)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
