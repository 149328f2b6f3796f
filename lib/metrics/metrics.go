// Package metrics holds the Prometheus collectors for the proxy.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodpick_upstream_requests_total",
			Help: "Outbound catalog requests by upstream and outcome",
		},
		[]string{"upstream", "outcome"}, // "ok", "status", "transport", "rejected"
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodpick_upstream_request_duration_seconds",
			Help:    "Latency of outbound catalog requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moodpick_circuit_breaker_state",
			Help: "Breaker state per upstream (0=closed, 1=half-open, 2=open)",
		},
		[]string{"upstream"},
	)

	ProxyResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodpick_proxy_responses_total",
			Help: "Catalog proxy responses by route and status code",
		},
		[]string{"route", "code"},
	)
)
