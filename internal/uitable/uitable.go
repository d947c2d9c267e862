// Package uitable renders Ledger records and registry capabilities as
// either JSON or a styled table, backing the `-f json|table` flag of the
// CLI commands that print records, batch results or capabilities.
package uitable

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Format is the output format selected by -f.
type Format string

const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// MaxErrorWidth truncates error_message cells in table mode, matching the
// original CLI's table truncation behavior (SPEC_FULL.md "Supplemented features").
const MaxErrorWidth = 80

// WriteJSON marshals v as indented JSON to w.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteTable renders headers/rows as a left-aligned, padded table.
func WriteTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	writeRow := func(cells []string, style lipgloss.Style) {
		var b strings.Builder
		for i, cell := range cells {
			b.WriteString(style.Width(widths[i]).Render(cellStyle.Render(cell)))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	writeRow(headers, headerStyle)
	for _, row := range rows {
		writeRow(row, lipgloss.NewStyle())
	}
}

// Truncate shortens s to n runes, appending an ellipsis if truncated.
func Truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
