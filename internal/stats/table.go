package stats

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Render prints the entries as a table.
func Render(w io.Writer, entries []Entry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Statistic", "Value", "Samples"})
	for _, e := range entries {
		if e.Timer {
			table.Append([]string{e.Name, fmt.Sprintf("%.6fs", e.Value), fmt.Sprintf("%d", e.Count)})
			continue
		}
		table.Append([]string{e.Name, fmt.Sprintf("%.0f", e.Value), ""})
	}
	table.Render()
}
