package metrics

import "github.com/prometheus/client_golang/prometheus"

// Domain Prometheus metrics.
var (
	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pagemark",
			Name:      "lookup_total",
			Help:      "Coordinate lookups by outcome",
		},
		[]string{"result"}, // "match" / "empty" / "error"
	)

	ExtractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pagemark",
			Name:      "extraction_duration_seconds",
			Help:      "Page text extraction duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"status"},
	)

	RenderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pagemark",
			Name:      "render_duration_seconds",
			Help:      "PDF page rasterization duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)

	TokenCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pagemark",
			Name:      "token_cache_total",
			Help:      "Page token cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	PointsSavedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pagemark",
			Name:      "points_saved_total",
			Help:      "Total number of saved points",
		},
	)

	DocumentsRegisteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pagemark",
			Name:      "documents_registered_total",
			Help:      "Total number of registered documents",
		},
	)
)

var domainMetricsRegistered bool

// RegisterDomainMetrics registers the domain metrics. Must be called once from main.
func RegisterDomainMetrics() {
	if domainMetricsRegistered {
		return
	}
	prometheus.MustRegister(LookupsTotal)
	prometheus.MustRegister(ExtractionDuration)
	prometheus.MustRegister(RenderDuration)
	prometheus.MustRegister(TokenCacheTotal)
	prometheus.MustRegister(PointsSavedTotal)
	prometheus.MustRegister(DocumentsRegisteredTotal)
	domainMetricsRegistered = true
}
