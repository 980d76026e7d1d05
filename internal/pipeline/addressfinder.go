package pipeline

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/techge/l2pre/internal/wire"
)

// candidateWidths are the n-gram widths AddressFinder tries, descending:
// the first accepted candidate of the largest width wins (spec §4.2,
// known-suboptimal by design — see spec §9 and DESIGN.md).
var candidateWidths = []int{6, 5, 4, 3, 2}

// FindAddresses infers the locations (two to four offsets) of fixed-width
// address fields from a set of messages and builds the initial symbol
// (spec §4.2). It fails with ErrNoAddressField if no candidate width yields an
// accepted n-gram.
func FindAddresses(messages []*wire.Message) (*wire.Symbol, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: no messages supplied", wire.ErrNoAddressField)
	}

	first := messages[0].Data
	maxLen := 0
	for _, m := range messages {
		if len(m.Data) > maxLen {
			maxLen = len(m.Data)
		}
	}

	for _, width := range candidateWidths {
		if width > len(first) {
			continue
		}
		for start := 0; start+width <= len(first); start++ {
			candidate := first[start : start+width]
			offsets, ok := evaluateCandidate(messages, candidate, width)
			if !ok {
				continue
			}
			return buildAddressSymbol(messages, offsets, width, maxLen), nil
		}
	}

	return nil, fmt.Errorf("%w: no n-gram width in {2..6} produced an accepted address candidate", wire.ErrNoAddressField)
}

// evaluateCandidate counts every offset at which candidate occurs across
// all messages and checks the acceptance rule: 2, 3 or 4 distinct
// non-overlapping offsets, consistently the same set each time the
// candidate is found.
func evaluateCandidate(messages []*wire.Message, candidate []byte, width int) ([]int, bool) {
	offsetSet := map[int]struct{}{}

	for _, m := range messages {
		data := m.Data
		begin := 0
		for {
			idx := bytes.Index(data[begin:], candidate)
			if idx < 0 {
				break
			}
			pos := begin + idx
			offsetSet[pos] = struct{}{}
			begin = pos + 1
		}
	}

	if len(offsetSet) < 2 || len(offsetSet) > 4 {
		return nil, false
	}

	offsets := make([]int, 0, len(offsetSet))
	for pos := range offsetSet {
		offsets = append(offsets, pos)
	}
	sort.Ints(offsets)

	for i := 1; i < len(offsets); i++ {
		if offsets[i]-offsets[i-1] < width {
			return nil, false
		}
	}

	return offsets, true
}

// buildAddressSymbol lays out Address fields at each accepted offset,
// filling the gaps between and before them with unnamed Field regions of
// exact width, and closing with a variable-size trailing Field spanning
// [0, maxLen].
func buildAddressSymbol(messages []*wire.Message, offsets []int, width, maxLen int) *wire.Symbol {
	var fields []wire.Field
	cursor := 0
	for _, pos := range offsets {
		if pos > cursor {
			fields = append(fields, wire.Field{Name: wire.FieldUnnamed, MinBytes: pos - cursor, MaxBytes: pos - cursor})
		}
		fields = append(fields, wire.Field{Name: wire.FieldAddress, MinBytes: width, MaxBytes: width})
		cursor = pos + width
	}
	if cursor < maxLen {
		fields = append(fields, wire.Field{Name: wire.FieldUnnamed, MinBytes: 0, MaxBytes: maxLen})
	}

	return wire.NewSymbol(wire.NewFieldLayout(fields...), messages)
}
