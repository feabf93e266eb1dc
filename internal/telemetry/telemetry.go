// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

// Package telemetry holds the dashboard's Prometheus instruments:
// poll-cycle throughput, remote fetch failures by kind, forced
// sign-outs, circuit breaker state, and HTTP serving latency.
// Exposed on GET /metrics.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Poll cycle metrics

	PollCycles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_poll_cycles_total",
			Help: "Total number of metrics poll cycles executed",
		},
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_fetch_errors_total",
			Help: "Total number of failed remote metrics fetches",
		},
		[]string{"endpoint", "kind"}, // endpoint: "snapshot", "daily"
	)

	SnapshotReplacements = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_snapshot_replacements_total",
			Help: "Times the held metrics snapshot was replaced with changed data",
		},
	)

	ForcedSignOuts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_forced_signouts_total",
			Help: "Sign-outs triggered by server-reported privilege loss",
		},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dashboard_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// HTTP serving metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "Duration of dashboard HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// RecordFetchError records one failed remote fetch by endpoint and
// error kind label.
func RecordFetchError(endpoint, kind string) {
	FetchErrors.WithLabelValues(endpoint, kind).Inc()
}
