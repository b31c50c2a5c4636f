package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// renderTable writes rows as a borderless, left-aligned table, or
// emptyMsg when there are none.
func renderTable(out io.Writer, headers []string, rows [][]string, emptyMsg string) {
	if len(rows) == 0 {
		fmt.Fprintln(out, emptyMsg)
		return
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader(headers)
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)

	for _, row := range rows {
		table.Append(row)
	}

	table.Render()
}
