package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/ledger"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/orchestrate"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/registry"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/uitable"
)

func writeJSON(cmd *cobra.Command, v any) error {
	return uitable.WriteJSON(cmd.OutOrStdout(), v)
}

var recordHeaders = []string{"UUID", "TYPE", "SOURCE_ID", "DESTINATION_ID", "STATUS", "ARCHIVED", "ERROR"}

func recordRow(rec *ledger.Record) []string {
	return []string{
		rec.UUID,
		rec.ResourceType,
		rec.SourceID,
		rec.DestinationID,
		string(rec.Status),
		fmt.Sprintf("%t", rec.Archived),
		uitable.Truncate(rec.ErrorMessage, uitable.MaxErrorWidth),
	}
}

// writeRecord renders a single migration record in the selected format.
func writeRecord(cmd *cobra.Command, rec *ledger.Record) error {
	if format() == uitable.FormatJSON {
		return writeJSON(cmd, rec)
	}
	uitable.WriteTable(cmd.OutOrStdout(), recordHeaders, [][]string{recordRow(rec)})
	return nil
}

// writeRecords renders a list of migration records in the selected format.
func writeRecords(cmd *cobra.Command, recs []*ledger.Record) error {
	if format() == uitable.FormatJSON {
		return writeJSON(cmd, recs)
	}
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, recordRow(rec))
	}
	uitable.WriteTable(cmd.OutOrStdout(), recordHeaders, rows)
	return nil
}

var capabilityHeaders = []string{"RESOURCE_TYPE", "SERVICE", "ASSOCIATED_TYPES", "MEMBER_TYPES", "SUPPORTED_FILTERS"}

func capabilityRow(c registry.Capability) []string {
	return []string{
		c.ResourceType,
		c.ServiceTag,
		joinOrDash(c.AssociatedTypes),
		joinOrDash(c.MemberTypes),
		joinOrDash(c.SupportedFilters),
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	out := items[0]
	for _, s := range items[1:] {
		out += "," + s
	}
	return out
}

func writeCapabilities(cmd *cobra.Command, caps []registry.Capability) error {
	if format() == uitable.FormatJSON {
		return writeJSON(cmd, caps)
	}
	rows := make([][]string, 0, len(caps))
	for _, c := range caps {
		rows = append(rows, capabilityRow(c))
	}
	uitable.WriteTable(cmd.OutOrStdout(), capabilityHeaders, rows)
	return nil
}

var batchHeaders = []string{"SOURCE_ID", "UUID", "STATUS", "SKIPPED", "ERROR"}

func batchRow(r orchestrate.BatchResult) []string {
	row := []string{r.SourceID, "", "", fmt.Sprintf("%t", r.Skipped), ""}
	if r.Record != nil {
		row[1] = r.Record.UUID
		row[2] = string(r.Record.Status)
	}
	if r.Err != nil {
		row[4] = uitable.Truncate(r.Err.Error(), uitable.MaxErrorWidth)
	}
	return row
}

// writeBatchResults renders the per-source-id outcome of a batch migration.
// It never fails the command on a per-item error: a batch's job is to
// report every outcome, and the caller decides exit status from the
// presence of errored entries if it needs to.
func writeBatchResults(cmd *cobra.Command, results []orchestrate.BatchResult) error {
	if format() == uitable.FormatJSON {
		return writeJSON(cmd, results)
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, batchRow(r))
	}
	uitable.WriteTable(cmd.OutOrStdout(), batchHeaders, rows)
	return nil
}
