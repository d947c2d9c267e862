package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/handler"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
)

var (
	startBatchOpts         handler.MigrateOptions
	startBatchFilters      []string
	startBatchResourceType string
	startBatchAll          bool
)

var startBatchCmd = &cobra.Command{
	Use:   "start-batch",
	Short: "Migrate every resource of a type matching the given filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(startBatchFilters) == 0 && !startBatchAll {
			return fmt.Errorf("%w: no filters specified; pass --all to migrate all resources", migerr.InvalidInput)
		}

		a, err := bootstrap(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		filters, err := parseFilters(startBatchFilters)
		if err != nil {
			return err
		}

		results, err := a.orch.MigrateBatch(ctx, startBatchResourceType, filters, startBatchOpts)
		if err != nil {
			return err
		}
		return writeBatchResults(cmd, results)
	},
}

func init() {
	startBatchCmd.Flags().StringVar(&startBatchResourceType, "resource-type", "", "resource type to migrate (required)")
	startBatchCmd.Flags().BoolVar(&startBatchOpts.DryRun, "dry-run", false, "walk the dependency graph and report what would migrate, without writing anything")
	startBatchCmd.Flags().BoolVar(&startBatchOpts.CleanupSource, "cleanup-source", false, "delete each source resource once its migration succeeds")
	startBatchCmd.Flags().BoolVar(&startBatchOpts.IncludeDeps, "include-dependencies", false, "recursively migrate unmigrated dependencies instead of failing")
	startBatchCmd.Flags().BoolVar(&startBatchOpts.IncludeMembers, "include-members", false, "also migrate member resources and reconnect them to their migrated parent")
	startBatchCmd.Flags().StringArrayVar(&startBatchFilters, "filter", nil, "filter in key:value form, repeatable; keys must be in the handler's supported filter set")
	startBatchCmd.Flags().BoolVar(&startBatchAll, "all", false, "allow migrating without --filter (every resource of this type); any --filter given still applies")
	_ = startBatchCmd.MarkFlagRequired("resource-type")
	rootCmd.AddCommand(startBatchCmd)
}

func parseFilters(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, f := range raw {
		k, v, ok := strings.Cut(f, ":")
		if !ok {
			return nil, fmt.Errorf("%w: filter %q must be in key:value form", migerr.InvalidInput, f)
		}
		out[k] = v
	}
	return out, nil
}
