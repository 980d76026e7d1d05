package pipeline

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techge/l2pre/internal/wire"
)

func TestRun_SingleTraceProducesSortedCluster(t *testing.T) {
	trace := Trace{Name: "trace-a", Messages: buildSwapAddressMessages(100)}

	cluster, stats, err := Run([]Trace{trace}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TracesProcessed)
	assert.Equal(t, len(cluster), stats.SymbolsProduced)
	require.NotEmpty(t, cluster)

	names := make([]string, len(cluster))
	for i, sym := range cluster {
		names[i] = sym.Name
	}
	assert.True(t, sort.StringsAreSorted(names), "final cluster must be sorted ascending by symbol name")
}

func TestRun_MultipleTracesCorrelatesContext(t *testing.T) {
	traceA := Trace{Name: "trace-eu", Messages: buildSwapAddressMessages(100)}
	traceB := Trace{Name: "trace-us", Messages: buildSwapAddressMessages(100)}

	cluster, stats, err := Run([]Trace{traceA, traceB}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TracesProcessed)
	require.NotEmpty(t, cluster)
	assert.Equal(t, len(cluster), stats.SymbolsProduced)
}

func TestRun_PropagatesFatalAddressError(t *testing.T) {
	trace := Trace{Name: "empty", Messages: nil}

	_, _, err := Run([]Trace{trace}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, wire.ErrNoAddressField)
}
