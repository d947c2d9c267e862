package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/ledger"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
)

var (
	listService          string
	listResourceType     string
	listSourceID         string
	listStatus           string
	listArchivedOnly     bool
	listIncludeArchived  bool
	listExternal         bool
	listNotExternal      bool
	listSourceRemoved    bool
	listNotSourceRemoved bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List migration records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listSourceRemoved && listNotSourceRemoved {
			return fmt.Errorf("%w: both --source-removed and --exclude-source-removed were specified", migerr.InvalidInput)
		}

		ctx := cmd.Context()
		a, err := bootstrap(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		f := ledger.Filters{
			Service:         listService,
			ResourceType:    listResourceType,
			SourceID:        listSourceID,
			Status:          ledger.Status(listStatus),
			ArchivedOnly:    listArchivedOnly,
			IncludeArchived: listIncludeArchived,
		}
		if listExternal {
			t := true
			f.External = &t
		} else if listNotExternal {
			fl := false
			f.External = &fl
		}
		if listSourceRemoved {
			t := true
			f.SourceRemoved = &t
		} else if listNotSourceRemoved {
			fl := false
			f.SourceRemoved = &fl
		}

		recs, err := a.store.Query(ctx, f)
		if err != nil {
			return err
		}
		return writeRecords(cmd, recs)
	},
}

func init() {
	listCmd.Flags().StringVar(&listService, "service", "", "filter by service tag")
	listCmd.Flags().StringVar(&listResourceType, "resource-type", "", "filter by resource type")
	listCmd.Flags().StringVar(&listSourceID, "source-id", "", "filter by source resource id")
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by Ledger status")
	listCmd.Flags().BoolVar(&listArchivedOnly, "archived", false, "show only archived records")
	listCmd.Flags().BoolVar(&listIncludeArchived, "include-archived", false, "include archived records alongside active ones")
	listCmd.Flags().BoolVar(&listExternal, "external", false, "show only records registered via register-external")
	listCmd.Flags().BoolVar(&listNotExternal, "no-external", false, "show only records the core itself migrated")
	listCmd.Flags().BoolVar(&listSourceRemoved, "source-removed", false, "show only records whose source resource was deleted")
	listCmd.Flags().BoolVar(&listNotSourceRemoved, "exclude-source-removed", false, "show only records whose source resource is still present")
	rootCmd.AddCommand(listCmd)
}
