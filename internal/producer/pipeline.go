// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package producer turns session callbacks into HUD notifications: it
// derives bitrate, frame loss and fps health from polled responses, routes
// pushed events, and queues follow-up requests.
package producer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Nicosch44/obs-info-hud/internal/derive"
	"github.com/Nicosch44/obs-info-hud/internal/hud"
	obslog "github.com/Nicosch44/obs-info-hud/internal/log"
	"github.com/Nicosch44/obs-info-hud/internal/metrics"
	"github.com/Nicosch44/obs-info-hud/internal/obsws"
)

// EventRouter handles pushed events.
type EventRouter interface {
	Route(ctx context.Context, ev obsws.Event) error
}

// FollowUps queues the requests that depend on an earlier response.
type FollowUps interface {
	AfterStats()
	AfterActiveStreamStatus()
}

// Pipeline implements obsws.Handler. All methods run on the session loop
// goroutine, so its state needs no locking.
type Pipeline struct {
	sink      hud.Sink
	router    EventRouter
	followUps FollowUps
	logger    zerolog.Logger

	bitrate   derive.BitrateMeter
	activeFPS float64
}

var _ obsws.Handler = (*Pipeline)(nil)

// New creates a Pipeline. followUps may be nil.
func New(sink hud.Sink, router EventRouter, followUps FollowUps, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		sink:      sink,
		router:    router,
		followUps: followUps,
		logger:    logger,
	}
}

// SetFollowUps attaches the follow-up scheduler once it exists.
func (p *Pipeline) SetFollowUps(f FollowUps) {
	p.followUps = f
}

// HandleState publishes the connection indicator.
func (p *Pipeline) HandleState(ctx context.Context, connected bool) {
	p.sink.Notify(ctx, hud.ConnectionChanged{
		Connected: connected,
		Status:    hud.ConnectionStatus(connected),
	})
}

// HandleEvent forwards ev to the router.
func (p *Pipeline) HandleEvent(ctx context.Context, ev obsws.Event) error {
	if p.router == nil {
		return nil
	}
	return p.router.Route(ctx, ev)
}

// HandleResponse applies one typed response.
func (p *Pipeline) HandleResponse(ctx context.Context, resp obsws.Response) error {
	switch v := resp.Payload.(type) {
	case *obsws.StreamStatus:
		return p.streamStatus(ctx, v)
	case *obsws.StreamServiceSettings:
		service, ok := v.Service()
		p.sink.Notify(ctx, hud.PlatformChanged{Service: service, Label: hud.PlatformLabel(service, ok)})
	case *obsws.ProfileList:
		p.sink.Notify(ctx, hud.ProfileChanged{
			Name:  v.CurrentProfileName,
			Label: hud.ProfileLabel(v.CurrentProfileName),
		})
	case *obsws.Stats:
		p.stats(ctx, v)
	case *obsws.VideoSettings:
		p.videoSettings(ctx, v)
	case *obsws.RecordStatus:
		return p.recordStatus(ctx, v)
	case *obsws.InputMute:
		p.sink.Notify(ctx, hud.MicMuteChanged{Muted: v.InputMuted})
	default:
		p.logger.Debug().
			Str(obslog.FieldRequestKind, resp.Kind.String()).
			Str("payload", fmt.Sprintf("%T", resp.Payload)).
			Msg("response without presentation")
	}
	return nil
}

// ActiveFPS returns the last rounded render rate.
func (p *Pipeline) ActiveFPS() float64 {
	return p.activeFPS
}

func (p *Pipeline) streamStatus(ctx context.Context, s *obsws.StreamStatus) error {
	metrics.SetStreaming(s.OutputActive)
	if !s.OutputActive {
		p.sink.Notify(ctx, hud.StreamingChanged{Active: false})
		return nil
	}

	ms, err := derive.ParseTimecode(s.OutputTimecode)
	if err != nil {
		return obsws.Malformed(obsws.KindGetStreamStatus.String(), "invalid_timecode", err)
	}
	kbps := p.bitrate.Observe(ms, s.OutputBytes)
	metrics.SetStreamBitrate(kbps)

	p.sink.Notify(ctx, hud.StreamingChanged{
		Active:      true,
		BitrateKbps: hud.Number(kbps),
		Bitrate:     derive.FormatKbps(kbps),
		Timecode:    derive.StripMillis(s.OutputTimecode),
	})
	if p.followUps != nil {
		p.followUps.AfterActiveStreamStatus()
	}
	return nil
}

func (p *Pipeline) stats(ctx context.Context, s *obsws.Stats) {
	p.activeFPS = derive.RoundFPS(s.ActiveFPS)
	missed := derive.MissedFramesPct(s.OutputSkippedFrames, s.OutputTotalFrames)
	skipped := derive.RenderSkippedPct(s.RenderSkippedFrames, s.RenderTotalFrames)

	metrics.SetActiveFPS(p.activeFPS)
	metrics.SetFrameLoss(missed, skipped)

	p.sink.Notify(ctx, hud.StatsChanged{
		ActiveFPS:        hud.Number(p.activeFPS),
		CPUUsage:         hud.Number(s.CPUUsage),
		MemoryUsage:      hud.Number(s.MemoryUsage),
		RenderTimeMs:     hud.Number(s.AverageFrameRenderTime),
		MissedFramesPct:  hud.Number(missed),
		RenderSkippedPct: hud.Number(skipped),
		FPS:              derive.FormatFPS(p.activeFPS),
		Line: hud.StatsLine(
			derive.CPUPercent(s.CPUUsage),
			derive.MemoryMB(s.MemoryUsage),
			derive.RenderTimeMs(s.AverageFrameRenderTime),
		),
		AdvancedLine: hud.AdvancedStatsLine(
			derive.FormatMissedPct(s.OutputSkippedFrames, s.OutputTotalFrames),
			derive.FormatPercent(skipped),
		),
	})
	if p.followUps != nil {
		p.followUps.AfterStats()
	}
}

func (p *Pipeline) videoSettings(ctx context.Context, v *obsws.VideoSettings) {
	ratio := derive.FPSRatio(p.activeFPS, v.FPSNumerator, v.FPSDenominator)
	tier := derive.ClassifyFPS(ratio)
	metrics.SetFPSHealthRatio(ratio)

	p.sink.Notify(ctx, hud.FPSHealthChanged{
		Ratio:    hud.Number(ratio),
		Tier:     tier,
		Color:    tier.Color(),
		MeterPct: hud.Number(derive.MeterPercent(ratio)),
	})
}

func (p *Pipeline) recordStatus(ctx context.Context, r *obsws.RecordStatus) error {
	state := hud.RecordingFromStatus(r.OutputActive, r.OutputPaused)
	n := hud.RecordingChanged{State: state, Source: hud.SourcePoll}
	if state.Active() {
		if _, err := derive.ParseTimecode(r.OutputTimecode); err != nil {
			return obsws.Malformed(obsws.KindGetRecordStatus.String(), "invalid_timecode", err)
		}
		n.Detail = &hud.RecordingDetail{
			Label:    hud.RecordLabel(state),
			Timecode: derive.StripMillis(r.OutputTimecode),
			Size:     derive.Megabytes(r.OutputBytes),
		}
	}
	metrics.SetRecordingState(state.String())
	p.sink.Notify(ctx, n)
	return nil
}
