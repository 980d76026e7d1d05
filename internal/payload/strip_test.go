package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/techge/l2pre/internal/wire"
)

func ethernetIPv4Frame(bodyLen int) []byte {
	frame := make([]byte, ethernetHeaderLen+20+bodyLen)
	// dst/src MAC left zero, EtherType at offset 12
	frame[12], frame[13] = 0x08, 0x00
	ip := frame[ethernetHeaderLen:]
	ip[0] = 0x45 // version 4, IHL 5 (20 bytes)
	ip[9] = 6    // TCP
	return frame
}

func TestStrip_RecognisesEthernetIPv4(t *testing.T) {
	frame := ethernetIPv4Frame(8)
	msg := wire.Message{Data: frame}

	stripped := Strip(msg)

	assert.Equal(t, "Ethernet+IPv4/6", stripped.PayloadSummary)
	assert.Len(t, stripped.PayloadData, 8)
	assert.Equal(t, frame, stripped.Data, "Strip must never mutate or truncate Data itself")
}

func TestStrip_RecognisesBareIPv6(t *testing.T) {
	data := make([]byte, 40+4)
	data[0] = 0x60 // version 6
	data[6] = 17   // UDP next header

	stripped := Strip(wire.Message{Data: data})

	assert.Equal(t, "IPv6/17", stripped.PayloadSummary)
	assert.Len(t, stripped.PayloadData, 4)
}

func TestStrip_RecognisesEthernetARP(t *testing.T) {
	frame := make([]byte, ethernetHeaderLen+8)
	frame[12], frame[13] = 0x08, 0x06

	stripped := Strip(wire.Message{Data: frame})

	assert.Equal(t, "Ethernet+ARP", stripped.PayloadSummary)
}

func TestStrip_LeavesUnrecognisedFrameUntouched(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	stripped := Strip(wire.Message{Data: data})

	assert.Empty(t, stripped.PayloadSummary)
	assert.Nil(t, stripped.PayloadData)
	assert.Equal(t, data, stripped.Data)
}
