package main

import (
	"github.com/spf13/cobra"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/handler"
)

var (
	startOpts         handler.MigrateOptions
	startResourceType string
)

var startCmd = &cobra.Command{
	Use:   "start SOURCE_ID",
	Short: "Migrate a single resource from the source cloud to the destination cloud",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.orch.Migrate(ctx, startResourceType, args[0], startOpts)
		if err != nil {
			return err
		}
		return writeRecord(cmd, rec)
	},
}

func init() {
	startCmd.Flags().StringVar(&startResourceType, "resource-type", "", "resource type to migrate (required)")
	startCmd.Flags().BoolVar(&startOpts.DryRun, "dry-run", false, "walk the dependency graph and report what would migrate, without writing anything")
	startCmd.Flags().BoolVar(&startOpts.CleanupSource, "cleanup-source", false, "delete the source resource (and cleanup-eligible dependencies) once migration succeeds")
	startCmd.Flags().BoolVar(&startOpts.IncludeDeps, "include-dependencies", false, "recursively migrate unmigrated dependencies instead of failing")
	startCmd.Flags().BoolVar(&startOpts.IncludeMembers, "include-members", false, "also migrate member resources and reconnect them to the migrated parent")
	_ = startCmd.MarkFlagRequired("resource-type")
	rootCmd.AddCommand(startCmd)
}
