package main

import "github.com/spf13/cobra"

var (
	cleanupSourceResourceType string
	cleanupSourceSourceID     string
)

var cleanupSourceCmd = &cobra.Command{
	Use:   "cleanup-source",
	Short: "Retry deleting the source resource of a migration stuck in PENDING_CLEANUP or SOURCE_CLEANUP_FAILED",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.orch.CleanupSource(ctx, cleanupSourceResourceType, cleanupSourceSourceID)
		if err != nil {
			return err
		}
		return writeRecord(cmd, rec)
	},
}

func init() {
	cleanupSourceCmd.Flags().StringVar(&cleanupSourceResourceType, "resource-type", "", "resource type of the migration to retry cleanup for")
	cleanupSourceCmd.Flags().StringVar(&cleanupSourceSourceID, "source-id", "", "source id of the migration to retry cleanup for")
	_ = cleanupSourceCmd.MarkFlagRequired("resource-type")
	_ = cleanupSourceCmd.MarkFlagRequired("source-id")
	rootCmd.AddCommand(cleanupSourceCmd)
}
