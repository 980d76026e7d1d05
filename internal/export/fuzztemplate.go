package export

import (
	"fmt"
	"io"

	"github.com/techge/l2pre/internal/wire"
)

// WriteFuzzTemplate emits a Python boofuzz template, mapping field names
// to boofuzz primitives the same way the original exporter did: Address
// and SEQ fields become Static primitives, checksum-classified fields
// become a Checksum primitive over the symbol's enclosing block
// (Checksum? uses crc32), and anything else becomes fuzzable Bytes.
func WriteFuzzTemplate(w io.Writer, cluster wire.Cluster) error {
	fmt.Fprintln(w, "from boofuzz import *")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "s_initialize(\"inferred\")")

	for _, sym := range cluster {
		blockName := sym.Name
		fmt.Fprintf(w, "\nwith s_block(%q):\n", blockName)

		fieldIdx := 0
		for _, f := range sym.Layout.Fields {
			primitiveName := fmt.Sprintf("%s_%d", luaFieldName(f.Name), fieldIdx)
			fieldIdx++

			switch {
			case f.Name == wire.FieldAddress || f.Name == wire.FieldSEQ:
				fmt.Fprintf(w, "    s_static(b\"\\x00\"*%d, name=%q)\n", f.MaxBytes, primitiveName)
			case f.Name == wire.FieldCRC32 || f.Name == wire.FieldAdler32 || f.Name == wire.FieldChecksum:
				algo := "crc32"
				if f.Name == wire.FieldAdler32 {
					algo = "adler32"
				}
				fmt.Fprintf(w, "    s_checksum(block_name=%q, algorithm=%q, length=%d, name=%q)\n", blockName, algo, f.MaxBytes, primitiveName)
			default:
				fmt.Fprintf(w, "    s_bytes(b\"\\x00\"*%d, name=%q)\n", f.MaxBytes, primitiveName)
			}
		}
	}

	return nil
}
