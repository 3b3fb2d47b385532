// Package metrics holds the Prometheus collectors of the service.
// HTTP metrics register on import; domain metrics register via their Register* funcs from main.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tagdex"

// Tagging (AI proposal) metrics.
var (
	TaggingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tagging_requests_total",
			Help:      "Total number of tagging requests to the chat completion API",
		},
		[]string{"model", "status"}, // "success" / "error" / "fallback"
	)

	TaggingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tagging_request_duration_seconds",
			Help:      "Tagging request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	TaggingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tagging_tokens_total",
			Help:      "Total tokens consumed by tagging requests",
		},
		[]string{"model", "type"}, // "prompt" / "completion" / "total"
	)

	TaggingBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tagging_budget_tokens_remaining",
			Help:      "Tokens left in the tagging budget (-1 = unlimited)",
		},
		[]string{"model", "period"}, // "daily" / "monthly"
	)

	TaggingBudgetRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tagging_budget_rejected_total",
			Help:      "Tagging requests rejected because the token budget was exhausted",
		},
		[]string{"model"},
	)
)

// Search and record metrics.
var (
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time to load and rank records for one query",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
	)

	SearchHits = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_hits",
			Help:      "Number of hits returned per query",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	RecordsAppendedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_appended_total",
			Help:      "Total number of records saved",
		},
	)
)

var (
	taggingOnce sync.Once
	searchOnce  sync.Once
)

// RegisterTaggingMetrics registers the tagging collectors. Safe to call more than once.
func RegisterTaggingMetrics() {
	taggingOnce.Do(func() {
		prometheus.MustRegister(
			TaggingRequestsTotal, TaggingRequestDuration, TaggingTokensTotal,
			TaggingBudgetTokensRemaining, TaggingBudgetRejectedTotal,
		)
	})
}

// RegisterSearchMetrics registers the search and record collectors. Safe to call more than once.
func RegisterSearchMetrics() {
	searchOnce.Do(func() {
		prometheus.MustRegister(SearchDuration, SearchHits, RecordsAppendedTotal)
	})
}
