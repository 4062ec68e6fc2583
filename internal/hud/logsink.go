// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package hud

import (
	"context"

	"github.com/rs/zerolog"

	obslog "github.com/Nicosch44/obs-info-hud/internal/log"
)

// LogSink writes every notification as a structured log entry. Audio level
// updates arrive many times per second and are logged at trace level.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Notify logs n.
func (s *LogSink) Notify(ctx context.Context, n Notification) {
	logger := obslog.WithContext(ctx, s.logger)
	ev := logger.Debug()
	if n.Topic() == TopicAudio {
		ev = logger.Trace()
	}
	ev.Str(obslog.FieldEvent, "hud."+n.Topic()).
		Interface("data", n).
		Msg("hud update")
}
