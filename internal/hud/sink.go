// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package hud holds the presentation model of the producer state: the
// notifications emitted by the session, the sinks that receive them, and
// the in-memory store served over HTTP.
package hud

import "context"

// Sink receives presentation updates. Notify is called from the session
// loop goroutine and must not block for long.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n Notification)

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

type multiSink []Sink

// Multi fans a notification out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multiSink) Notify(ctx context.Context, n Notification) {
	for _, s := range m {
		s.Notify(ctx, n)
	}
}
