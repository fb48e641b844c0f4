package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for a catalog build.
type Metrics struct {
	FilesSummarized    prometheus.Counter
	RowsCataloged      prometheus.Counter
	DocumentsWritten   prometheus.Counter
	ValidationFailures prometheus.Counter

	// Dataset writer metrics.
	WriteRetries prometheus.Counter

	SummarizeDuration prometheus.Histogram
}

// NewMetrics creates and registers all build metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FilesSummarized,
		m.RowsCataloged,
		m.DocumentsWritten,
		m.ValidationFailures,
		m.WriteRetries,
		m.SummarizeDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesSummarized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sar_catalog",
			Name:      "files_summarized_total",
			Help:      "Total GeoParquet files summarized.",
		}),
		RowsCataloged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sar_catalog",
			Name:      "rows_cataloged_total",
			Help:      "Total observation rows accounted in the collection.",
		}),
		DocumentsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sar_catalog",
			Name:      "documents_written_total",
			Help:      "Total metadata documents persisted.",
		}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sar_catalog",
			Name:      "validation_failures_total",
			Help:      "Total record validation failures.",
		}),
		WriteRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sar_catalog",
			Name:      "write_retries_total",
			Help:      "Total dataset write attempts retried after throttling.",
		}),
		SummarizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sar_catalog",
			Name:      "summarize_duration_seconds",
			Help:      "Duration of per-file summarization.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
