package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todo_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Remote store metrics
	RemoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_remote_calls_total",
			Help: "Calls made to the remote todo resource",
		},
		[]string{"operation", "outcome"},
	)

	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todo_remote_call_duration_seconds",
			Help:    "Duration of calls to the remote todo resource",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_validation_failures_total",
			Help: "Inputs rejected before reaching the remote resource",
		},
		[]string{"field"},
	)

	CollectionSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "todo_collection_size",
			Help: "Number of todos held in memory",
		},
	)

	// Snapshot cache
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_cache_lookups_total",
			Help: "Snapshot cache lookups",
		},
		[]string{"result"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_events_published_total",
			Help: "Todo events handed to the event queue",
		},
		[]string{"action", "outcome"},
	)

	EventsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_events_consumed_total",
			Help: "Todo events processed by the worker",
		},
		[]string{"outcome"},
	)
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// OutcomeOf maps an error to an outcome label.
func OutcomeOf(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
