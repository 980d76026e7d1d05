// Package metrics exposes pipeline counters through a local Prometheus
// registry and renders them to the text exposition format for a run
// (spec §2 [AMBIENT]): traces imported, symbols produced, messages
// deduplicated, and per-stage durations.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Registry bundles the counters and gauges one run populates.
type Registry struct {
	reg *prometheus.Registry

	TracesImported     prometheus.Counter
	SymbolsProduced    prometheus.Gauge
	MessagesDeduped    prometheus.Counter
	StageDuration      *prometheus.HistogramVec
}

// New builds a fresh registry; callers create one per run rather than
// sharing a process-global registry, since this tool runs one pipeline
// per invocation.
func New() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.TracesImported = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "l2pre_traces_imported_total",
		Help: "Number of trace files successfully imported.",
	})
	r.SymbolsProduced = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "l2pre_symbols_produced",
		Help: "Number of distinct symbols in the final cluster.",
	})
	r.MessagesDeduped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "l2pre_messages_deduped_total",
		Help: "Number of messages removed as duplicates across all symbols.",
	})
	r.StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "l2pre_stage_duration_seconds",
		Help: "Wall-clock duration of each pipeline stage.",
	}, []string{"stage"})

	r.reg.MustRegister(r.TracesImported, r.SymbolsProduced, r.MessagesDeduped, r.StageDuration)
	return r
}

// ObserveStage records how long a named stage took.
func (r *Registry) ObserveStage(stage string, d time.Duration) {
	r.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// WriteTo renders every registered metric in the text exposition format
// used by metrics.prom.
func (r *Registry) WriteTo(w io.Writer) error {
	families, err := r.reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metric family %q: %w", mf.GetName(), err)
		}
	}
	return nil
}
