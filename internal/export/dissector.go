package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/techge/l2pre/internal/wire"
)

// WriteDissector emits a Lua skeleton in the shape Wireshark expects: a
// Proto, one ProtoField per distinct field name across the cluster, and a
// dissector function that walks the active symbol's field list in order.
func WriteDissector(w io.Writer, cluster wire.Cluster, protoName string) error {
	fmt.Fprintf(w, "-- generated dissector for %s\n", protoName)
	fmt.Fprintf(w, "local p_%s = Proto(%q, %q)\n\n", protoName, protoName, protoName)

	seen := map[string]bool{}
	for _, sym := range cluster {
		for _, f := range sym.Layout.Fields {
			luaName := luaFieldName(f.Name)
			if seen[luaName] {
				continue
			}
			seen[luaName] = true
			fmt.Fprintf(w, "local f_%s = ProtoField.bytes(%q, %q)\n", luaName, protoName+"."+luaName, f.Name)
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "\np_%s.fields = {", protoName)
	for i, name := range names {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "f_%s", name)
	}
	fmt.Fprint(w, "}\n\n")

	fmt.Fprintf(w, "function p_%s.dissector(buffer, pinfo, tree)\n", protoName)
	fmt.Fprintf(w, "  pinfo.cols.protocol = %q\n", strings.ToUpper(protoName))
	fmt.Fprintf(w, "  local subtree = tree:add(p_%s, buffer())\n", protoName)

	for _, sym := range cluster {
		fmt.Fprintf(w, "  -- %s\n", sym.Name)
		start := 0
		for _, f := range sym.Layout.Fields {
			width := f.MaxBytes
			if width == 0 {
				start += width
				continue
			}
			fmt.Fprintf(w, "  subtree:add(f_%s, buffer(%d, %d))\n", luaFieldName(f.Name), start, width)
			start += width
		}
		break
	}

	fmt.Fprintln(w, "end")
	fmt.Fprintf(w, "\nlocal eth_table = DissectorTable.get(\"ethertype\")\n")
	fmt.Fprintf(w, "-- eth_table:add(0xYYYY, p_%s)\n", protoName)
	return nil
}

func luaFieldName(name string) string {
	r := strings.NewReplacer(
		"?", "",
		" ", "_",
		"-", "_",
		":", "_",
	)
	return strings.ToLower(r.Replace(name))
}
