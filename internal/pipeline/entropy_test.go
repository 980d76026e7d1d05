package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteEntropy_ConstantColumnIsZero(t *testing.T) {
	data := [][]byte{{0xAA, 1}, {0xAA, 2}, {0xAA, 3}, {0xAA, 4}}
	assert.Equal(t, 0.0, byteEntropy(data, 0))
}

func TestByteEntropy_UniformColumnIsHigh(t *testing.T) {
	data := make([][]byte, 256)
	for i := range data {
		data[i] = []byte{byte(i)}
	}
	e := byteEntropy(data, 0)
	assert.InDelta(t, 8.0, e, 0.001, "256 equally likely byte values carry exactly 8 bits of entropy")
}

func TestPositionEntropies_SizedToLongestMessage(t *testing.T) {
	data := [][]byte{{1, 2}, {1, 2, 3, 4}}
	entropies := positionEntropies(data)
	assert.Len(t, entropies, 4)
}
