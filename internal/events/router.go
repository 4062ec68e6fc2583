// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package events routes pushed OBS events to HUD notifications.
package events

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	obslog "github.com/Nicosch44/obs-info-hud/internal/log"
	"github.com/Nicosch44/obs-info-hud/internal/hud"
	"github.com/Nicosch44/obs-info-hud/internal/metrics"
	"github.com/Nicosch44/obs-info-hud/internal/obsws"
)

// Router turns InputVolumeMeters and RecordStateChanged events into sink
// updates. Other event types are ignored.
type Router struct {
	audioInput string
	sink       hud.Sink
	logger     zerolog.Logger
}

// NewRouter creates a Router. An empty audioInput disables level updates.
func NewRouter(audioInput string, sink hud.Sink, logger zerolog.Logger) *Router {
	return &Router{
		audioInput: norm.NFC.String(audioInput),
		sink:       sink,
		logger:     logger,
	}
}

// Route handles one event. It returns a malformed-message error when a
// recognised event cannot be interpreted; the caller skips it.
func (r *Router) Route(ctx context.Context, ev obsws.Event) error {
	switch p := ev.Payload.(type) {
	case *obsws.InputVolumeMeters:
		return r.volumeMeters(ctx, p)
	case *obsws.RecordStateChanged:
		r.recordState(ctx, p)
		return nil
	default:
		return nil
	}
}

func (r *Router) volumeMeters(ctx context.Context, p *obsws.InputVolumeMeters) error {
	if r.audioInput == "" {
		return nil
	}
	for _, in := range p.Inputs {
		if norm.NFC.String(in.InputName) != r.audioInput {
			continue
		}
		levels := in.InputLevelsMul
		if len(levels) == 0 {
			r.sink.Notify(ctx, hud.AudioLevelsChanged{Input: in.InputName, Hidden: true})
			return nil
		}
		if len(levels) < 2 {
			return obsws.Malformed(obsws.EventInputVolumeMeters, "missing_channel", nil)
		}
		if len(levels[0]) < 2 || len(levels[1]) < 2 {
			return obsws.Malformed(obsws.EventInputVolumeMeters, "missing_peak", nil)
		}
		r.sink.Notify(ctx, hud.AudioLevelsChanged{
			Input: in.InputName,
			Left:  hud.Number(levels[0][1]),
			Right: hud.Number(levels[1][1]),
		})
		return nil
	}
	return nil
}

func (r *Router) recordState(ctx context.Context, p *obsws.RecordStateChanged) {
	state := hud.RecordingFromOutputState(p.OutputState)
	metrics.SetRecordingState(state.String())
	r.logger.Debug().
		Str(obslog.FieldEvent, "events.record_state").
		Str("output_state", p.OutputState).
		Str("recording", state.String()).
		Msg("record state changed")
	r.sink.Notify(ctx, hud.RecordingChanged{State: state, Source: hud.SourceEvent})
}
