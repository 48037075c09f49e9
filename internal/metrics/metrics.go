package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DistanceLookups tracks resolver lookups by outcome
	// (same_city, cached, resolved, exhausted, canceled)
	DistanceLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmailer_distance_lookups_total",
			Help: "Total number of distance lookups by outcome",
		},
		[]string{"outcome"},
	)

	// DistanceQueries tracks calls made to the external distance service
	DistanceQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmailer_distance_queries_total",
			Help: "Total number of distance service calls",
		},
		[]string{"provider"},
	)

	// DistanceQueryErrors tracks failed distance service calls
	DistanceQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmailer_distance_query_errors_total",
			Help: "Total number of failed distance service calls",
		},
		[]string{"provider", "error_type"},
	)

	// DistanceQueryLatency tracks distance service latency
	DistanceQueryLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventmailer_distance_query_latency_seconds",
			Help:    "Distance service call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// DistanceCacheErrors tracks cache backend failures (treated as misses)
	DistanceCacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmailer_distance_cache_errors_total",
			Help: "Total number of distance cache backend errors",
		},
		[]string{"op"},
	)

	// BreakerState tracks the circuit breaker state (0 closed, 1 half-open, 2 open)
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventmailer_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	// EventsSelected tracks how many events each strategy chose
	EventsSelected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmailer_events_selected_total",
			Help: "Total number of events selected per strategy",
		},
		[]string{"strategy"},
	)

	// SelectionShortfalls tracks fixed-size selections that had too few candidates
	SelectionShortfalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmailer_selection_shortfalls_total",
			Help: "Total number of selections with fewer candidates than requested",
		},
		[]string{"strategy"},
	)

	// Deliveries tracks notification deliveries per sink
	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmailer_deliveries_total",
			Help: "Total number of notification deliveries",
		},
		[]string{"sink", "status"},
	)

	// StrategyDeliveries tracks deliveries per selection strategy
	StrategyDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmailer_strategy_deliveries_total",
			Help: "Total number of deliveries per selection strategy",
		},
		[]string{"strategy", "status"},
	)

	// DBConnectionPoolUsage tracks outbox connection pool usage in percent
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventmailer_db_connection_pool_usage_percent",
			Help: "Percentage of the outbox connection pool in use",
		},
	)
)
