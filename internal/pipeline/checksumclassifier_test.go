package pipeline

import (
	"encoding/binary"
	"hash/adler32"
	"hash/crc32"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/techge/l2pre/internal/wire"
)

func layoutWithTrailingChecksum() *wire.FieldLayout {
	return wire.NewFieldLayout(
		wire.Field{Name: wire.FieldAddress, MinBytes: 6, MaxBytes: 6},
		wire.Field{Name: wire.FieldHighEntropy, MinBytes: 4, MaxBytes: 4},
		wire.Field{Name: wire.FieldUnnamed, MinBytes: 0, MaxBytes: 0},
	)
}

func TestClassifyChecksum_DetectsCRC32(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	messages := make([]*wire.Message, 20)
	for i := range messages {
		body := make([]byte, 16)
		rng.Read(body)
		sum := crc32.ChecksumIEEE(body)
		var trailer [4]byte
		binary.LittleEndian.PutUint32(trailer[:], sum)
		messages[i] = &wire.Message{Data: append(body, trailer[:]...)}
	}

	sym := wire.NewSymbol(layoutWithTrailingChecksum(), messages)
	ClassifyChecksum(sym)

	assert.Equal(t, wire.FieldCRC32, sym.Layout.Fields[1].Name)
	assert.Contains(t, sym.Assumptions, "checksum field assumed to be followed only by a payload residual")
}

func TestClassifyChecksum_DetectsAdler32(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	messages := make([]*wire.Message, 20)
	for i := range messages {
		body := make([]byte, 16)
		rng.Read(body)
		sum := adler32.Checksum(body)
		var trailer [4]byte
		binary.LittleEndian.PutUint32(trailer[:], sum)
		messages[i] = &wire.Message{Data: append(body, trailer[:]...)}
	}

	sym := wire.NewSymbol(layoutWithTrailingChecksum(), messages)
	ClassifyChecksum(sym)

	assert.Equal(t, wire.FieldAdler32, sym.Layout.Fields[1].Name)
}

func TestClassifyChecksum_FallsBackToUnknown(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	messages := make([]*wire.Message, 20)
	for i := range messages {
		data := make([]byte, 20)
		rng.Read(data)
		messages[i] = &wire.Message{Data: data}
	}

	sym := wire.NewSymbol(layoutWithTrailingChecksum(), messages)
	ClassifyChecksum(sym)

	assert.Equal(t, wire.FieldChecksum, sym.Layout.Fields[1].Name)
}

func TestClassifyChecksum_SkipsWithoutHighEntropyPenultimate(t *testing.T) {
	layout := wire.NewFieldLayout(
		wire.Field{Name: wire.FieldAddress, MinBytes: 6, MaxBytes: 6},
		wire.Field{Name: wire.FieldUnnamed, MinBytes: 0, MaxBytes: 4},
	)
	sym := wire.NewSymbol(layout, []*wire.Message{{Data: make([]byte, 10)}})

	ClassifyChecksum(sym)

	assert.Empty(t, sym.Assumptions)
	assert.Equal(t, wire.FieldUnnamed, sym.Layout.Fields[1].Name)
}
