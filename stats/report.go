package stats

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"
)

// Render writes a human-readable rendering of r to w, using a
// table layout. When w is a terminal, the table is capped to the
// terminal width; otherwise a generous default is used.
func Render(w io.Writer, remote string, r Report) {
	width := 100
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetColWidth(width / 5)
	table.SetHeader([]string{"direction", "min", "avg", "max", "last", "jitter"})
	table.Append(row("outbound", r.Outbound))
	table.Append(row("inbound", r.Inbound))
	table.Append(row("round-trip", r.RoundTrip))
	table.Render()

	fmt.Fprintf(w, "peer %s: sent=%d received=%d loss_outbound=%d loss_inbound=%d loss_roundtrip=%.1f%%\n",
		remote, r.Sent, r.Received, r.LossOutbound, r.LossInbound, r.LossRoundtrip)
}

func row(name string, d DirectionStats) []string {
	return []string{
		name,
		d.Min.String(),
		d.Avg.String(),
		d.Max.String(),
		d.Last.String(),
		d.Jitter.String(),
	}
}
