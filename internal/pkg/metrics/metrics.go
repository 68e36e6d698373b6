// Package metrics defines the Prometheus metrics exported at /metrics.
// Metrics are registered with the default registry on package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lecturealert"

// HTTPRequestsTotal counts served requests.
// Labels: method, route (gin full path, "unmatched" for 404s), status.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests served.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// AuthAttemptsTotal counts session operations.
// Labels: operation (sign_in, sign_up, sign_out), result (success, invalid, failure).
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of sign-in, sign-up and sign-out attempts.",
	},
	[]string{"operation", "result"},
)

// DashboardAggregationsTotal counts aggregation runs per role.
var DashboardAggregationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_aggregations_total",
		Help:      "Total number of dashboard aggregations, by role.",
	},
	[]string{"role"},
)

// DashboardSubqueryFailuresTotal counts sub-fetches that degraded to empty results.
// Labels: role, query (enrollments, courses, lectures, students).
var DashboardSubqueryFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_subquery_failures_total",
		Help:      "Total number of dashboard sub-queries that failed and fell back to empty values.",
	},
	[]string{"role", "query"},
)

// DashboardStaleDiscardsTotal counts aggregation results dropped because the identity changed.
var DashboardStaleDiscardsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_stale_discards_total",
		Help:      "Total number of dashboard results discarded after an identity change.",
	},
)

// DashboardAggregationDuration measures a full aggregation including all sub-fetches.
var DashboardAggregationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "dashboard_aggregation_duration_seconds",
		Help:      "Duration of dashboard aggregations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"role"},
)

// ActiveSessions tracks signed-in providers registered with the session manager.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of signed-in session providers held in memory.",
	},
)

// LiveClients tracks connected websocket clients.
var LiveClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_clients",
		Help:      "Number of connected live event clients.",
	},
)
