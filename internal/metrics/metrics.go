// Package metrics instruments selection contexts and ingestion with
// Prometheus collectors. Each Recorder owns its registry; nothing is
// exposed over the network.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/mesh-intelligence/facets/internal/engine"
)

// Recorder collects engine metrics.
type Recorder struct {
	reg            *prometheus.Registry
	recomputations *prometheus.CounterVec
	matched        *prometheus.GaugeVec
	possible       *prometheus.HistogramVec
	rowsLoaded     prometheus.Counter
}

// New returns a Recorder with its collectors registered on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		recomputations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "facets_context_recomputations_total",
			Help: "Selection changes that recomputed a context's matching rows.",
		}, []string{"table"}),
		matched: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "facets_context_matched_rows",
			Help: "Rows matching the current selection of a context.",
		}, []string{"table"}),
		possible: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "facets_possible_duration_seconds",
			Help:    "Time spent propagating a selection to one facet column.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"column"}),
		rowsLoaded: f.NewCounter(prometheus.CounterOpts{
			Name: "facets_rows_loaded_total",
			Help: "Rows ingested into tables.",
		}),
	}
}

// Registry returns the registry holding the Recorder's collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Observer returns an observer that counts recomputations and tracks the
// matched row count of the context it is registered on.
func (r *Recorder) Observer() engine.Observer {
	return engine.ObserverFunc(func(ctx *engine.DataContext) {
		table := ctx.Table().Name()
		r.recomputations.WithLabelValues(table).Inc()
		r.matched.WithLabelValues(table).Set(float64(ctx.Count()))
	})
}

// Track registers the Recorder on ctx and records its current row count.
func (r *Recorder) Track(ctx *engine.DataContext) {
	r.matched.WithLabelValues(ctx.Table().Name()).Set(float64(ctx.Count()))
	ctx.Observe(r.Observer())
}

// ObservePossible runs fn and records its duration under column.
func (r *Recorder) ObservePossible(column string, fn func()) {
	timer := prometheus.NewTimer(r.possible.WithLabelValues(column))
	defer timer.ObserveDuration()
	fn()
}

// RowsLoaded adds n to the ingested row counter.
func (r *Recorder) RowsLoaded(n int) {
	r.rowsLoaded.Add(float64(n))
}

// Snapshot renders every sample as a "name{labels} value" line, sorted.
// Histograms are reported by their _count and _sum series.
func (r *Recorder) Snapshot() ([]string, error) {
	families, err := r.reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}
	var lines []string
	for _, mf := range families {
		name := mf.GetName()
		for _, m := range mf.GetMetric() {
			labels := formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				lines = append(lines, sample(name, labels, m.GetCounter().GetValue()))
			case dto.MetricType_GAUGE:
				lines = append(lines, sample(name, labels, m.GetGauge().GetValue()))
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				lines = append(lines,
					sample(name+"_count", labels, float64(h.GetSampleCount())),
					sample(name+"_sum", labels, h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)
	return lines, nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func sample(name, labels string, v float64) string {
	return fmt.Sprintf("%s%s %g", name, labels, v)
}
