// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics provides Prometheus metrics for the obs-hud session controller.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "obshud_connection_state",
		Help: "Websocket connection state (active state=1; others 0)",
	}, []string{"state"})

	connectionAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obshud_connection_attempts_total",
		Help: "Total number of websocket connection attempts, by result (identified/failed)",
	}, []string{"result"})

	disconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obshud_disconnects_total",
		Help: "Total number of websocket sessions that ended, by reason",
	}, []string{"reason"})

	reconnectsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "obshud_reconnects_scheduled_total",
		Help: "Total number of reconnect attempts scheduled after a socket close",
	})

	messagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obshud_messages_received_total",
		Help: "Total number of inbound websocket messages, by op",
	}, []string{"op"})

	messagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obshud_messages_sent_total",
		Help: "Total number of outbound websocket messages, by op",
	}, []string{"op"})

	malformedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obshud_malformed_messages_total",
		Help: "Total number of inbound messages skipped because they failed validation, by reason",
	}, []string{"reason"})
)

// ConnectionStates lists every label value used by the connection state gauge.
var ConnectionStates = []string{"disconnected", "connecting", "awaiting_hello", "authenticating", "identified"}

// SetConnectionState records the active connection state.
func SetConnectionState(state string) {
	for _, s := range ConnectionStates {
		value := 0.0
		if s == state {
			value = 1.0
		}
		connectionState.WithLabelValues(s).Set(value)
	}
}

// RecordConnectionAttempt counts a finished connection attempt.
func RecordConnectionAttempt(identified bool) {
	result := "failed"
	if identified {
		result = "identified"
	}
	connectionAttempts.WithLabelValues(result).Inc()
}

// RecordDisconnect counts an ended session by its classified reason.
func RecordDisconnect(reason string) {
	disconnects.WithLabelValues(reason).Inc()
}

// IncReconnectScheduled counts a scheduled reconnect.
func IncReconnectScheduled() {
	reconnectsScheduled.Inc()
}

// RecordMessageReceived counts an inbound message by op name.
func RecordMessageReceived(op string) {
	messagesReceived.WithLabelValues(op).Inc()
}

// RecordMessageSent counts an outbound message by op name.
func RecordMessageSent(op string) {
	messagesSent.WithLabelValues(op).Inc()
}

// RecordMalformed counts an inbound message skipped as malformed.
func RecordMalformed(reason string) {
	malformedMessages.WithLabelValues(reason).Inc()
}
