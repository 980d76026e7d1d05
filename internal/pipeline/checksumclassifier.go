package pipeline

import (
	"encoding/binary"
	"hash/adler32"
	"hash/crc32"

	"github.com/techge/l2pre/internal/wire"
)

// checksumSampleSize is the number of messages tested against known
// integrity algorithms before giving up and calling a field an unknown
// Checksum? (spec §6).
const checksumSampleSize = 10

// ClassifyChecksum tests a trailing 32-bit High_entropy field against
// CRC-32 and Adler-32 (spec §4.6). The penultimate-field heuristic
// assumes the layout's last field is a (possibly empty) payload
// residual; symbols whose last field is non-empty but whose protocol in
// fact carries no payload will misattribute this, so the assumption is
// recorded rather than silently trusted (spec §9).
func ClassifyChecksum(sym *wire.Symbol) {
	n := len(sym.Layout.Fields)
	if n < 2 {
		return
	}
	penultimate := n - 2
	f := sym.Layout.Fields[penultimate]
	if f.Name != wire.FieldHighEntropy || f.MinBytes != 4 || f.MaxBytes != 4 {
		return
	}

	sym.AddAssumption("checksum field assumed to be followed only by a payload residual")

	sampleSize := checksumSampleSize
	if len(sym.Messages) < sampleSize {
		sampleSize = len(sym.Messages)
	}

	name := wire.FieldChecksum
	for i := 0; i < sampleSize; i++ {
		data := sym.Messages[i].Data
		if len(data) < 4 {
			continue
		}
		body, trailer := data[:len(data)-4], data[len(data)-4:]

		var crcBuf, adlerBuf [4]byte
		binary.LittleEndian.PutUint32(crcBuf[:], crc32.ChecksumIEEE(body))
		binary.LittleEndian.PutUint32(adlerBuf[:], adler32.Checksum(body))

		if bytesEqual(trailer, crcBuf[:]) {
			name = wire.FieldCRC32
			break
		}
		if bytesEqual(trailer, adlerBuf[:]) {
			name = wire.FieldAdler32
			break
		}
	}

	sym.Layout.Fields[penultimate].Name = name
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
