// Package export renders an inferred cluster to the three report formats
// the original tool produced: a human-readable protocol format, a
// Wireshark Lua dissector skeleton, and a boofuzz fuzz template
// (spec §4.12).
package export

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/techge/l2pre/internal/wire"
)

// sampleMessageCount bounds how many hex samples each symbol section
// prints, keeping reports readable for clusters with many messages.
const sampleMessageCount = 5

// WriteProtocolFormat writes one section per symbol: its name, ordered
// field list with byte ranges, assumptions (if any), and a handful of
// sample messages in hex.
func WriteProtocolFormat(w io.Writer, cluster wire.Cluster) error {
	for _, sym := range cluster {
		fmt.Fprintf(w, "== %s ==\n", sym.Name)

		start := 0
		for _, f := range sym.Layout.Fields {
			end := start + f.MaxBytes
			fmt.Fprintf(w, "  [%3d:%3d) %-16s min=%d max=%d\n", start, end, f.Name, f.MinBytes, f.MaxBytes)
			start = end
		}

		for _, a := range sym.Assumptions {
			fmt.Fprintf(w, "  assumption: %s\n", a)
		}

		n := sampleMessageCount
		if len(sym.Messages) < n {
			n = len(sym.Messages)
		}
		fmt.Fprintf(w, "  samples (%d of %d messages):\n", n, len(sym.Messages))
		for i := 0; i < n; i++ {
			fmt.Fprintf(w, "    %s\n", hex.EncodeToString(sym.Messages[i].Data))
		}
		fmt.Fprintln(w)
	}
	return nil
}
