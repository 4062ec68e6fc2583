// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// No request ids in labels: kind cardinality is fixed.
var (
	requestsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obshud_requests_sent_total",
		Help: "Total number of requests written to the socket, by kind",
	}, []string{"kind"})

	requestsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obshud_requests_dropped_total",
		Help: "Total number of requests dropped before reaching the socket, by kind and reason",
	}, []string{"kind", "reason"})

	requestsExpired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obshud_requests_expired_total",
		Help: "Total number of outstanding requests garbage collected without a response, by kind",
	}, []string{"kind"})

	requestsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obshud_requests_failed_total",
		Help: "Total number of responses carrying a failed request status, by kind",
	}, []string{"kind"})

	responsesUnmatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obshud_responses_unmatched_total",
		Help: "Total number of responses with no matching outstanding request, by kind",
	}, []string{"kind"})

	requestRoundTrip = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "obshud_request_roundtrip_seconds",
		Help:    "Time between writing a request and receiving its correlated response",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"kind"})
)

// RecordRequestSent counts a request written to the socket.
func RecordRequestSent(kind string) {
	requestsSent.WithLabelValues(kind).Inc()
}

// RecordRequestDropped counts a request discarded before it was written.
func RecordRequestDropped(kind, reason string) {
	requestsDropped.WithLabelValues(kind, reason).Inc()
}

// RecordRequestsExpired adds n expired requests of the given kind.
func RecordRequestsExpired(kind string, n int) {
	if n <= 0 {
		return
	}
	requestsExpired.WithLabelValues(kind).Add(float64(n))
}

// RecordRequestFailed counts a response whose request status reported failure.
func RecordRequestFailed(kind string) {
	requestsFailed.WithLabelValues(kind).Inc()
}

// RecordResponseUnmatched counts a response that had no outstanding request.
func RecordResponseUnmatched(kind string) {
	responsesUnmatched.WithLabelValues(kind).Inc()
}

// ObserveRoundTrip records the latency of a correlated response.
func ObserveRoundTrip(kind string, d time.Duration) {
	if d < 0 {
		return
	}
	requestRoundTrip.WithLabelValues(kind).Observe(d.Seconds())
}
