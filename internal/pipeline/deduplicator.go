package pipeline

import "github.com/techge/l2pre/internal/wire"

// maskedFieldNames are zeroed out before the duplicate check (spec §4.9):
// counters and checksums vary between otherwise-identical messages and
// would otherwise defeat deduplication.
var maskedFieldNames = map[string]bool{
	wire.FieldSEQ:      true,
	wire.FieldCRC32:    true,
	wire.FieldAdler32:  true,
	wire.FieldChecksum: true,
}

// Deduplicate snapshots a symbol's messages into OrigMessages (if not
// already snapshotted), then keeps the first message of every distinct
// byte sequence once masked fields are zeroed, recording the survivors
// into DedupMessages (spec §4.9). The live Messages slice is left
// pointing at the deduplicated set.
func Deduplicate(sym *wire.Symbol) {
	if sym.OrigMessages == nil {
		sym.OrigMessages = append([]*wire.Message(nil), sym.Messages...)
	}

	seen := map[string]struct{}{}
	kept := make([]*wire.Message, 0, len(sym.Messages))

	for _, m := range sym.Messages {
		masked := maskFields(sym.Layout, m.Data)
		key := string(masked)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		clone := m.Clone()
		clone.Data = masked
		kept = append(kept, clone)
	}

	sym.DedupMessages = append([]*wire.Message(nil), kept...)
	sym.Messages = kept
}

// maskFields returns a copy of data with every masked field's byte range
// zeroed, without mutating data itself.
func maskFields(layout *wire.FieldLayout, data []byte) []byte {
	masked := append([]byte(nil), data...)

	start := 0
	for _, f := range layout.Fields {
		end := start + f.MaxBytes
		if maskedFieldNames[f.Name] {
			lo, hi := start, end
			if lo > len(masked) {
				lo = len(masked)
			}
			if hi > len(masked) {
				hi = len(masked)
			}
			for i := lo; i < hi; i++ {
				masked[i] = 0
			}
		}
		start = end
	}

	return masked
}
