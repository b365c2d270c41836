package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bhoomisetu",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bhoomisetu",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search pipeline duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	RankingOutcomeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bhoomisetu",
			Name:      "ranking_outcome_total",
			Help:      "Ranking outcomes per search",
		},
		[]string{"outcome"}, // "ai" / "fallback" / "skipped"
	)

	GeocodeResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bhoomisetu",
			Name:      "geocode_results_total",
			Help:      "Geocoding results by producing source",
		},
		[]string{"source"},
	)

	GeocodeCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bhoomisetu",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

func init() {
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(RankingOutcomeTotal)
	prometheus.MustRegister(GeocodeResultsTotal)
	prometheus.MustRegister(GeocodeCacheTotal)
}
