package dscp

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// RenderTable writes the full DSCP name->TOS table to w.
func RenderTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"name", "dscp", "tos"})
	for _, e := range Entries() {
		table.Append([]string{e.Name, fmt.Sprintf("%d", e.Code), fmt.Sprintf("0x%02x", e.TOS)})
	}
	table.Render()
}
