package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/techge/l2pre/internal/concurrency"
	"github.com/techge/l2pre/internal/wire"
)

// Trace is one imported capture: a name and its messages. Any context
// metadata travels on each message's Metadata field.
type Trace struct {
	Name     string
	Messages []*wire.Message
}

// Stats accumulates counters a caller can forward to internal/metrics.
type Stats struct {
	TracesProcessed    int
	SymbolsProduced    int
	MessagesDeduped    int
	SkippedSequenceLow int
}

// Run executes the full field-inference pipeline over one or more traces
// (spec §2, §5): AddressFinder through ChecksumClassifier per trace,
// ContextCorrelator across traces (when there are at least two), then
// LayoutNormaliser and Deduplicator per final symbol. The returned cluster
// is sorted ascending by symbol name (spec §6, Reproducibility law).
func Run(traces []Trace, logger *log.Logger) (wire.Cluster, Stats, error) {
	var stats Stats
	if logger == nil {
		logger = log.Default()
	}

	// Stage 1-4 (AddressFinder through ChecksumClassifier) is independent
	// per trace, so it is fanned out over a bounded worker pool (spec §5);
	// traceResult.cluster entries come back indexed by the caller's trace
	// order regardless of which worker finishes first, keeping the merge
	// step below reproducible.
	type traceResult struct {
		cluster    wire.Cluster
		skippedSeq int
	}

	results, err := concurrency.Map(traces, concurrency.Workers(len(traces)), func(_ int, t Trace) (traceResult, error) {
		logger.Info("analysing trace", "name", t.Name, "messages", len(t.Messages))

		sym, err := FindAddresses(t.Messages)
		if err != nil {
			return traceResult{}, fmt.Errorf("trace %q: %w", t.Name, err)
		}

		cluster, err := ClusterByFrameType(sym)
		if err != nil {
			return traceResult{}, fmt.Errorf("trace %q: %w", t.Name, err)
		}

		var skippedSeq int
		for _, child := range cluster {
			if err := DetectSequences(child); err != nil {
				if errors.Is(err, wire.ErrTooFewMessagesForSeq) {
					skippedSeq++
					logger.Debug("skipping sequence detection", "symbol", child.Name, "reason", err)
					continue
				}
				return traceResult{}, fmt.Errorf("trace %q: %w", t.Name, err)
			}
			ClassifyChecksum(child)
		}

		return traceResult{cluster: cluster, skippedSeq: skippedSeq}, nil
	})
	if err != nil {
		return nil, stats, err
	}

	perTraceClusters := make([]wire.Cluster, 0, len(traces))
	for _, r := range results {
		perTraceClusters = append(perTraceClusters, r.cluster)
		stats.SkippedSequenceLow += r.skippedSeq
		stats.TracesProcessed++
	}

	var final wire.Cluster
	if len(perTraceClusters) >= 2 {
		merged, err := CorrelateContext(perTraceClusters)
		if err != nil {
			return nil, stats, err
		}
		final = merged
	} else {
		for _, c := range perTraceClusters {
			final = append(final, c...)
		}
	}

	for _, sym := range final {
		if err := NormaliseLayout(sym); err != nil {
			return nil, stats, fmt.Errorf("symbol %q: %w", sym.Name, err)
		}
		before := len(sym.Messages)
		Deduplicate(sym)
		stats.MessagesDeduped += before - len(sym.Messages)
	}

	sort.Slice(final, func(i, j int) bool { return final[i].Name < final[j].Name })
	stats.SymbolsProduced = len(final)

	logger.Info("pipeline complete", "symbols", stats.SymbolsProduced, "traces", stats.TracesProcessed)

	return final, stats, nil
}
