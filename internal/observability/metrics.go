package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the deck
// build pipeline. The one-shot build increments them before exiting; the
// preview server exposes them on /metrics.
type Metrics struct {
	RecordsLoaded  prometheus.Counter
	SlidesRendered prometheus.Counter
	BuildsTotal    *prometheus.CounterVec // labels: outcome={success,error}
	BuildDuration  prometheus.Histogram
	BuildRunning   prometheus.Gauge

	// Boundary provider metrics.
	BoundaryFetches *prometheus.CounterVec // labels: kind, outcome={success,error,empty}
	BoundaryCache   *prometheus.CounterVec // labels: result={hit,miss}

	// Ingest metrics.
	MessagesConsumed prometheus.Counter
	RowsRejected     prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crash_deck",
			Name:      "records_loaded_total",
			Help:      "Total crash records loaded from the dataset file.",
		}),
		SlidesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crash_deck",
			Name:      "slides_rendered_total",
			Help:      "Total slides rendered into the deck.",
		}),
		BuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crash_deck",
			Name:      "builds_total",
			Help:      "Deck builds by outcome.",
		}, []string{"outcome"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crash_deck",
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete load-aggregate-render build.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		BuildRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crash_deck",
			Name:      "build_running",
			Help:      "1 while a build is active, 0 otherwise.",
		}),
		BoundaryFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crash_deck",
			Name:      "boundary_fetches_total",
			Help:      "Boundary provider requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		BoundaryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crash_deck",
			Name:      "boundary_cache_total",
			Help:      "Boundary cache lookups by result.",
		}, []string{"result"}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crash_deck",
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the crash-records topic.",
		}),
		RowsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crash_deck",
			Name:      "rows_rejected_total",
			Help:      "Total ingested rows rejected during parsing.",
		}),
	}

	prometheus.MustRegister(
		m.RecordsLoaded,
		m.SlidesRendered,
		m.BuildsTotal,
		m.BuildDuration,
		m.BuildRunning,
		m.BoundaryFetches,
		m.BoundaryCache,
		m.MessagesConsumed,
		m.RowsRejected,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsLoaded:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "crash_deck", Name: "records_loaded_total"}),
		SlidesRendered:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "crash_deck", Name: "slides_rendered_total"}),
		BuildsTotal:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "crash_deck", Name: "builds_total"}, []string{"outcome"}),
		BuildDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "crash_deck", Name: "build_duration_seconds"}),
		BuildRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "crash_deck", Name: "build_running"}),
		BoundaryFetches:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "crash_deck", Name: "boundary_fetches_total"}, []string{"kind", "outcome"}),
		BoundaryCache:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "crash_deck", Name: "boundary_cache_total"}, []string{"result"}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "crash_deck", Name: "messages_consumed_total"}),
		RowsRejected:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "crash_deck", Name: "rows_rejected_total"}),
	}
}
