package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Request volume
	RequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "requests_total",
		Help: "Total number of API requests received.",
	})

	// Request latency (handler duration)
	RequestDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "request_duration_seconds",
		Help:    "End-to-end handler duration for API requests.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	})

	// Imported rows across CSV uploads and restores
	WordsImportedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "words_imported_total",
		Help: "Total number of word rows imported via upload or restore.",
	})

	// Enrichment lookups that produced no example (timeout, error, miss)
	EnrichmentMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "enrichment_misses_total",
		Help: "Dictionary lookups that returned no example sentence.",
	})
)

func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		RequestsTotal,
		RequestDurationSeconds,
		WordsImportedTotal,
		EnrichmentMissesTotal,
	)
}
