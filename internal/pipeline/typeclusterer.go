package pipeline

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"

	"github.com/techge/l2pre/internal/wire"
)

// ClusterByFrameType finds the first unnamed Field in the symbol's
// layout, renames it Frame_type, and produces one child symbol per
// distinct value observed for it (spec §4.4). If the layout has no
// unnamed field at all, the parent symbol is returned unchanged as the
// sole member of the cluster.
func ClusterByFrameType(sym *wire.Symbol) (wire.Cluster, error) {
	frameTypeIdx := -1
	for i, f := range sym.Layout.Fields {
		if f.Name == wire.FieldUnnamed {
			frameTypeIdx = i
			break
		}
	}
	if frameTypeIdx == -1 {
		return wire.Cluster{sym}, nil
	}

	sym.Layout.Fields[frameTypeIdx].Name = wire.FieldFrameType

	values, err := wire.QuickFieldValues(sym, frameTypeIdx)
	if err != nil {
		return nil, err
	}

	order := []string{}
	buckets := map[string][]*wire.Message{}
	for i, v := range values {
		key := string(v)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], sym.Messages[i])
	}

	cluster := make(wire.Cluster, 0, len(order))
	for _, key := range order {
		msgs := buckets[key]
		if len(msgs) == 0 {
			return nil, fmt.Errorf("%w: frame type value %x produced no messages", wire.ErrEmptyCluster, []byte(key))
		}

		var layoutCopy wire.FieldLayout
		if err := deepcopy.Copy(&layoutCopy, sym.Layout); err != nil {
			return nil, fmt.Errorf("deep copy symbol layout: %w", err)
		}

		child := &wire.Symbol{
			Name:        fmt.Sprintf("Symbol_%x", []byte(key)),
			Layout:      &layoutCopy,
			Messages:    msgs,
			Assumptions: append([]string(nil), sym.Assumptions...),
		}
		cluster = append(cluster, child)
	}

	return cluster, nil
}
