package wire

import "fmt"

// Symbol is one inferred message type: a field layout, the messages that
// produced it, a name, and the pre-/post-deduplication snapshots taken
// once Deduplicator has run (spec §3).
type Symbol struct {
	Name   string
	Layout *FieldLayout

	Messages      []*Message
	OrigMessages  []*Message
	DedupMessages []*Message

	// Assumptions records unverified, tagged judgement calls a stage made
	// about this symbol (spec §9 "Open questions"), so exporters and
	// operators can see them without the core silently auto-correcting.
	Assumptions []string
}

// NewSymbol builds a Symbol named "Symbol" (the default per spec §3).
func NewSymbol(layout *FieldLayout, messages []*Message) *Symbol {
	return &Symbol{Name: "Symbol", Layout: layout, Messages: messages}
}

// ShortestMessage returns the length in bytes of the shortest message
// associated with the symbol.
func (s *Symbol) ShortestMessage() int {
	if len(s.Messages) == 0 {
		return 0
	}
	shortest := len(s.Messages[0].Data)
	for _, m := range s.Messages[1:] {
		if len(m.Data) < shortest {
			shortest = len(m.Data)
		}
	}
	return shortest
}

// LongestMessage returns the length in bytes of the longest message
// associated with the symbol.
func (s *Symbol) LongestMessage() int {
	longest := 0
	for _, m := range s.Messages {
		if len(m.Data) > longest {
			longest = len(m.Data)
		}
	}
	return longest
}

// AddAssumption appends a tagged assumption if it is not already present.
func (s *Symbol) AddAssumption(note string) {
	for _, a := range s.Assumptions {
		if a == note {
			return
		}
	}
	s.Assumptions = append(s.Assumptions, note)
}

// FieldValue reads the byte range for fields[idx] from a single message,
// using the position computed by walking only the preceding fields. It is
// the single-message building block the quick field-value reader uses
// across a whole symbol.
func FieldValue(layout *FieldLayout, idx int, data []byte) []byte {
	start := 0
	for i := 0; i < idx; i++ {
		start += layout.Fields[i].MaxBytes
	}
	end := start + layout.Fields[idx].MaxBytes
	if end > len(data) {
		end = len(data)
	}
	if start > len(data) {
		start = len(data)
	}
	return data[start:end]
}

// QuickFieldValues reads the byte slice for fields[idx] from every
// message of the symbol (spec §4.3). It requires every preceding field to
// be fixed-size (min_bytes == max_bytes); a variable-size field earlier in
// the layout means the offset of fields[idx] is not well defined, and the
// read fails with ErrVariableField.
func QuickFieldValues(sym *Symbol, idx int) ([][]byte, error) {
	if idx < 0 || idx >= len(sym.Layout.Fields) {
		return nil, fmt.Errorf("%w: field index %d out of range", ErrLayout, idx)
	}
	for i := 0; i < idx; i++ {
		f := sym.Layout.Fields[i]
		if f.MinBytes != f.MaxBytes {
			return nil, fmt.Errorf("%w: field %d (%q) is variable-size (%d..%d bytes)",
				ErrVariableField, i, f.Name, f.MinBytes, f.MaxBytes)
		}
	}

	values := make([][]byte, len(sym.Messages))
	for i, m := range sym.Messages {
		values[i] = FieldValue(sym.Layout, idx, m.Data)
	}
	return values, nil
}
