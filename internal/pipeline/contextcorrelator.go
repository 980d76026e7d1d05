package pipeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/techge/l2pre/internal/concurrency"
	"github.com/techge/l2pre/internal/wire"
)

// CorrelateContext is stage 5 (spec §4.7), active only when the caller has
// at least two traces' worth of clusters. It groups all symbols across
// traces by name, correlates constant-but-differing byte positions with
// per-trace context metadata to name otherwise unidentified fields, and
// merges structurally equivalent per-trace symbols. It fails with
// ErrMergeLoss if the merge step ever loses a bucket entirely.
func CorrelateContext(clusters []wire.Cluster) (wire.Cluster, error) {
	bucketOrder := []string{}
	buckets := map[string][]*wire.Symbol{}
	for _, cluster := range clusters {
		for _, sym := range cluster {
			if _, ok := buckets[sym.Name]; !ok {
				bucketOrder = append(bucketOrder, sym.Name)
			}
			buckets[sym.Name] = append(buckets[sym.Name], sym)
		}
	}

	// Each bucket (all symbols sharing a name across traces) is merged and
	// context-correlated independently of every other bucket, so the work
	// is fanned out over a bounded worker pool (spec §5, §4.7); results
	// come back indexed by bucketOrder regardless of completion order,
	// keeping the merged cluster's composition reproducible.
	bucketResults, err := concurrency.Map(bucketOrder, concurrency.Workers(len(bucketOrder)), func(_ int, name string) ([]*wire.Symbol, error) {
		symList := buckets[name]

		if allFewerThanTwoMessages(symList) {
			return mergeSymbolsInBucket(symList), nil
		}

		featurePerPosition := contextFeaturesForBucket(symList)

		merged := mergeSymbolsInBucket(symList)
		for _, s := range merged {
			if len(featurePerPosition) == 0 {
				continue
			}
			if err := s.Layout.InsertMany(featurePerPosition, s.ShortestMessage()); err != nil {
				return nil, fmt.Errorf("context correlator: %w", err)
			}
		}
		return merged, nil
	})
	if err != nil {
		return nil, err
	}

	var result wire.Cluster
	for _, merged := range bucketResults {
		result = append(result, merged...)
	}

	if len(result) < len(bucketOrder) {
		return nil, fmt.Errorf("%w: %d of %d buckets lost", wire.ErrMergeLoss, len(bucketOrder)-len(result), len(bucketOrder))
	}

	return result, nil
}

func allFewerThanTwoMessages(symList []*wire.Symbol) bool {
	for _, s := range symList {
		if len(s.Messages) >= 2 {
			return false
		}
	}
	return true
}

// contextFeaturesForBucket finds the byte offsets that are internally
// constant in every symbol of the bucket but whose constant value
// differs between symbols in a way that tracks a difference in the
// symbols' trace context metadata (spec §4.7 steps 1-2).
func contextFeaturesForBucket(symList []*wire.Symbol) map[int]wire.InsertSpec {
	entropyLists := make([][]float64, len(symList))
	minLen := -1
	for i, s := range symList {
		if len(s.Messages) == 1 {
			entropyLists[i] = make([]float64, len(s.Messages[0].Data))
		} else {
			data := make([][]byte, len(s.Messages))
			for j, m := range s.Messages {
				data[j] = m.Data
			}
			entropyLists[i] = positionEntropies(data)
		}
		if minLen == -1 || len(entropyLists[i]) < minLen {
			minLen = len(entropyLists[i])
		}
	}

	features := map[int]wire.InsertSpec{}
	for pos := 0; pos < minLen; pos++ {
		allZero := true
		for _, e := range entropyLists {
			if e[pos] != 0.0 {
				allZero = false
				break
			}
		}
		if !allZero {
			continue
		}

		valsOrder := []byte{}
		valsMeta := map[byte][]map[string]string{}
		for _, s := range symList {
			if len(s.Messages[0].Data) <= pos {
				break
			}
			v := s.Messages[0].Data[pos]
			if _, ok := valsMeta[v]; !ok {
				valsOrder = append(valsOrder, v)
			}
			valsMeta[v] = append(valsMeta[v], s.Messages[0].Metadata)
		}

		if len(valsMeta) < 2 {
			continue
		}

		fixedContext := map[byte]map[string]string{}
		for _, v := range valsOrder {
			var acc map[string]string
			for _, meta := range valsMeta[v] {
				if len(acc) == 0 {
					acc = copyMetadata(meta)
					continue
				}
				acc = intersectMetadata(acc, meta)
			}
			fixedContext[v] = acc
		}

		contextChanges := map[string]struct{}{}
		var prevMeta map[string]string
		for _, v := range valsOrder {
			meta2 := fixedContext[v]
			if len(prevMeta) == 0 {
				prevMeta = meta2
				continue
			}
			for k, v1 := range prevMeta {
				if v2, ok := meta2[k]; ok && v1 != v2 {
					contextChanges[k] = struct{}{}
				}
			}
			prevMeta = meta2
		}

		if len(contextChanges) == 0 {
			continue
		}

		keys := make([]string, 0, len(contextChanges))
		for k := range contextChanges {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		features[pos] = wire.InsertSpec{Width: 1, Name: strings.Join(keys, ":")}
	}

	return features
}

// fieldsAreSimilar compares two symbols' layouts: same name, same field
// count, same (min, max) size for every field but the last.
func fieldsAreSimilar(a, b *wire.Symbol) bool {
	if a.Name != b.Name {
		return false
	}
	fa, fb := a.Layout.Fields, b.Layout.Fields
	if len(fa) != len(fb) {
		return false
	}
	for i := range fa {
		if i == len(fa)-1 {
			continue
		}
		if fa[i].MinBytes != fb[i].MinBytes || fa[i].MaxBytes != fb[i].MaxBytes {
			return false
		}
	}
	return true
}

// mergeSymbolsInBucket merges a bucket's symbols into one where possible;
// every subsequent symbol is compared only against the first (spec §4.7
// step 3), exactly as the original implementation does.
func mergeSymbolsInBucket(symList []*wire.Symbol) []*wire.Symbol {
	if len(symList) == 0 {
		return nil
	}
	merged := []*wire.Symbol{symList[0]}
	suffix := 1
	for _, sym := range symList[1:] {
		if fieldsAreSimilar(merged[0], sym) {
			merged[0].Messages = append(merged[0].Messages, sym.Messages...)
			merged[0].OrigMessages = append(merged[0].OrigMessages, sym.OrigMessages...)
		} else {
			sym.Name = sym.Name + "-" + strconv.Itoa(suffix)
			suffix++
			merged = append(merged, sym)
		}
	}
	return merged
}

func copyMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func intersectMetadata(a, b map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range a {
		if v2, ok := b[k]; ok && v2 == v {
			out[k] = v
		}
	}
	return out
}
