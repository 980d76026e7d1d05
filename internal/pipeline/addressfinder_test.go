package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techge/l2pre/internal/wire"
)

// buildSwapAddressMessages builds messages where two devices alternate
// sender/receiver roles: addrs[i%2] always sits at offset 2 and
// addrs[(i+1)%2] always sits at offset 10, so across the corpus both
// pool values are observed at both offsets (the "sometimes sender,
// sometimes receiver" condition AddressFinder depends on). The two
// bytes before each address differ from each other, so no window that
// starts before offset 2 repeats at a second offset.
func buildSwapAddressMessages(n int) []*wire.Message {
	addrs := [][]byte{
		{1, 2, 3, 4, 5, 6},
		{7, 8, 9, 10, 11, 12},
	}
	filler := byte(0xFF)

	messages := make([]*wire.Message, n)
	for i := 0; i < n; i++ {
		data := make([]byte, 20)
		data[0], data[1] = 0xF0, 0xF1
		copy(data[2:8], addrs[i%2])
		data[8], data[9] = 0xF8, 0xF9
		copy(data[10:16], addrs[(i+1)%2])
		for j := 16; j < 20; j++ {
			data[j] = filler
		}
		messages[i] = &wire.Message{Data: data}
	}
	return messages
}

func TestFindAddresses_TwoOffsets(t *testing.T) {
	messages := buildSwapAddressMessages(100)

	sym, err := FindAddresses(messages)
	require.NoError(t, err)

	require.Len(t, sym.Layout.Fields, 5)
	assert.Equal(t, wire.FieldUnnamed, sym.Layout.Fields[0].Name)
	assert.Equal(t, 2, sym.Layout.Fields[0].MaxBytes)
	assert.Equal(t, wire.FieldAddress, sym.Layout.Fields[1].Name)
	assert.Equal(t, 6, sym.Layout.Fields[1].MaxBytes)
	assert.Equal(t, wire.FieldUnnamed, sym.Layout.Fields[2].Name)
	assert.Equal(t, 2, sym.Layout.Fields[2].MaxBytes)
	assert.Equal(t, wire.FieldAddress, sym.Layout.Fields[3].Name)
	assert.Equal(t, 6, sym.Layout.Fields[3].MaxBytes)
	assert.Equal(t, wire.FieldUnnamed, sym.Layout.Fields[4].Name)
	assert.Equal(t, 20, sym.Layout.Fields[4].MaxBytes)
	assert.Equal(t, 2, sym.Layout.CountNamed(wire.FieldAddress))
}

func TestFindAddresses_NoCandidate(t *testing.T) {
	messages := []*wire.Message{
		{Data: []byte{1, 2, 3, 4, 5}},
		{Data: []byte{6, 7, 8, 9, 10}},
	}
	_, err := FindAddresses(messages)
	require.Error(t, err)
	assert.ErrorIs(t, err, wire.ErrNoAddressField)
}
