package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the analysis pipeline.
type Metrics struct {
	AnalysesTotal    prometheus.Counter
	FailuresTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	FetchDuration    prometheus.Histogram
}

// New registers the instruments on reg. Pass prometheus.DefaultRegisterer in
// production; tests use a fresh registry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AnalysesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "seoscan_analyses_total",
			Help: "Completed page analyses.",
		}),
		FailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seoscan_failures_total",
			Help: "Analysis failures by kind.",
		}, []string{"kind"}), // invalid_url, timeout, target_status, parse, store, internal
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "seoscan_analysis_duration_seconds",
			Help:    "End to end analysis duration.",
			Buckets: prometheus.DefBuckets,
		}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "seoscan_fetch_duration_seconds",
			Help:    "Target page fetch duration.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) ObserveAnalysis(d time.Duration) {
	m.AnalysesTotal.Inc()
	m.AnalysisDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveFetch(d time.Duration) {
	m.FetchDuration.Observe(d.Seconds())
}

func (m *Metrics) IncFailure(kind string) {
	m.FailuresTotal.WithLabelValues(kind).Inc()
}
