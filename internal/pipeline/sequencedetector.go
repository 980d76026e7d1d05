package pipeline

import (
	"fmt"
	"sort"

	"github.com/techge/l2pre/internal/wire"
)

// minMessagesForSeq and the threshold constants below are part of the
// specification (spec §6): fixed, not runtime-tunable.
const (
	minMessagesForSeq = 50

	eqOverflowThreshold  = 0.95
	ltOverflowThreshold  = 0.1
	eqSingleByteThreshold = 0.25
	highEntropyThreshold  = 7.0
)

// DetectSequences finds 1- and 2-byte counter fields that increment on a
// per-sender basis, and flags remaining high-entropy positions as
// checksum candidates (spec §4.5). If the symbol has fewer than one
// Address field or fewer than minMessagesForSeq messages, it returns
// ErrTooFewMessagesForSeq and leaves the symbol unmodified — a non-fatal
// condition the caller should treat as "nothing to do here".
func DetectSequences(sym *wire.Symbol) error {
	addrIdxs := addressFieldIndices(sym)
	if len(addrIdxs) == 0 || len(sym.Messages) < minMessagesForSeq {
		return wire.ErrTooFewMessagesForSeq
	}

	senderIdx := addrIdxs[0]
	if len(addrIdxs) >= 2 {
		senderIdx = addrIdxs[1]
		sym.AddAssumption("sender address assumed to be the second Address field")
	}

	senderValues, err := wire.QuickFieldValues(sym, senderIdx)
	if err != nil {
		return err
	}

	data := make([][]byte, len(sym.Messages))
	for i, m := range sym.Messages {
		data[i] = m.Data
	}
	entropies := positionEntropies(data)
	maxLen := sym.LongestMessage()
	total := len(sym.Messages)

	srcValues := distinctSorted(senderValues)

	toInsert := map[int]wire.InsertSpec{}
	skipNext := false

	for pos := 1; pos < maxLen; pos++ {
		if skipNext {
			skipNext = false
			continue
		}

		leftMSB, leftLSB, rightMSB, rightLSB := true, true, true, true
		eqCount, ltCount := 0, 0

		for _, src := range srcValues {
			prevIdx := -1
			for i, m := range sym.Messages {
				if string(senderValues[i]) != src {
					continue
				}
				if pos >= len(m.Data) {
					break
				}
				if prevIdx == -1 {
					prevIdx = i
					continue
				}

				prevData := sym.Messages[prevIdx].Data
				currData := m.Data

				bPrev, bCurr := prevData[pos], currData[pos]
				lPrev, lCurr := prevData[pos-1], currData[pos-1]
				rPrev, rCurr := byteAt(prevData, pos+1), byteAt(currData, pos+1)

				switch {
				case bCurr == bPrev:
					eqCount++
					if lCurr < lPrev {
						leftMSB = false
					}
					if rCurr < rPrev {
						rightMSB = false
					}
				case bCurr > bPrev:
					if lCurr >= lPrev {
						leftMSB = false
					}
					if rCurr >= rPrev {
						rightMSB = false
					}
				default:
					ltCount++
					if lCurr <= lPrev {
						leftLSB = false
					}
					if rCurr <= rPrev {
						rightLSB = false
					}
				}

				prevIdx = i
			}
		}

		eq := float64(eqCount) / float64(total)
		lt := float64(ltCount) / float64(total)

		switch {
		case (leftMSB && eq < eqOverflowThreshold && lt < ltOverflowThreshold) || (leftLSB && eq < eqSingleByteThreshold):
			toInsert[pos-1] = wire.InsertSpec{Width: 2, Name: wire.FieldSEQ}
		case (rightMSB && eq < eqOverflowThreshold && lt < ltOverflowThreshold) || (rightLSB && eq < eqSingleByteThreshold):
			toInsert[pos] = wire.InsertSpec{Width: 2, Name: wire.FieldSEQ}
			skipNext = true
		case eq < eqSingleByteThreshold && lt < ltOverflowThreshold:
			toInsert[pos] = wire.InsertSpec{Width: 1, Name: wire.FieldSEQ}
		case entropies[pos] > highEntropyThreshold:
			toInsert[pos] = wire.InsertSpec{Width: 1, Name: wire.FieldHighEntropy}
		}
	}

	if err := sym.Layout.InsertMany(toInsert, sym.ShortestMessage()); err != nil {
		return fmt.Errorf("sequence detector: %w", err)
	}
	return nil
}

func byteAt(data []byte, pos int) byte {
	if pos >= len(data) {
		return 0
	}
	return data[pos]
}

func addressFieldIndices(sym *wire.Symbol) []int {
	var idxs []int
	for i, f := range sym.Layout.Fields {
		if f.Name == wire.FieldAddress {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// distinctSorted returns the distinct byte values present, sorted
// lexicographically so stages iterate them in a deterministic order
// (spec §8, Reproducibility law).
func distinctSorted(values [][]byte) []string {
	seen := map[string]struct{}{}
	for _, v := range values {
		seen[string(v)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
