package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techge/l2pre/internal/wire"
)

func TestDeduplicate_CollapsesSeqOnlyVariance(t *testing.T) {
	layout := wire.NewFieldLayout(
		wire.Field{Name: wire.FieldAddress, MinBytes: 6, MaxBytes: 6},
		wire.Field{Name: wire.FieldSEQ, MinBytes: 2, MaxBytes: 2},
		wire.Field{Name: wire.FieldUnnamed, MinBytes: 2, MaxBytes: 2},
	)

	messages := make([]*wire.Message, 1000)
	for i := 0; i < 1000; i++ {
		seq := i + 1 // keep every SEQ value non-zero, including the first message's
		data := []byte{1, 2, 3, 4, 5, 6, byte(seq >> 8), byte(seq), 9, 9}
		messages[i] = &wire.Message{Data: data}
	}

	sym := wire.NewSymbol(layout, messages)
	Deduplicate(sym)

	require.Len(t, sym.OrigMessages, 1000)
	require.Len(t, sym.DedupMessages, 1)
	require.Len(t, sym.Messages, 1)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 0, 0, 9, 9}, sym.DedupMessages[0].Data,
		"the retained message's SEQ bytes must be canonicalized to zero, not left as whatever the first message happened to carry")
	assert.Equal(t, uint16(1), uint16(messages[0].Data[6])<<8|uint16(messages[0].Data[7]), "sanity check: the source message's real SEQ bytes are non-zero")
}

func TestDeduplicate_KeepsDistinctNonMaskedBytes(t *testing.T) {
	layout := wire.NewFieldLayout(
		wire.Field{Name: wire.FieldAddress, MinBytes: 4, MaxBytes: 4},
		wire.Field{Name: wire.FieldSEQ, MinBytes: 1, MaxBytes: 1},
	)
	messages := []*wire.Message{
		{Data: []byte{1, 1, 1, 1, 0}},
		{Data: []byte{1, 1, 1, 1, 1}},
		{Data: []byte{2, 2, 2, 2, 0}},
	}

	sym := wire.NewSymbol(layout, messages)
	Deduplicate(sym)

	require.Len(t, sym.Messages, 2, "only the SEQ byte varies between the first two messages")
}

func TestDeduplicate_DoesNotMutateOriginalBytes(t *testing.T) {
	layout := wire.NewFieldLayout(wire.Field{Name: wire.FieldSEQ, MinBytes: 2, MaxBytes: 2})
	original := []byte{0xAA, 0xBB}
	messages := []*wire.Message{{Data: original}}

	sym := wire.NewSymbol(layout, messages)
	Deduplicate(sym)

	assert.Equal(t, []byte{0xAA, 0xBB}, original, "masking must operate on a copy, never the source bytes")
}
