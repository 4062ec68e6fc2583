// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package events

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nicosch44/obs-info-hud/internal/hud"
	"github.com/Nicosch44/obs-info-hud/internal/obsws"
)

type captureSink struct {
	got []hud.Notification
}

func (c *captureSink) Notify(_ context.Context, n hud.Notification) {
	c.got = append(c.got, n)
}

func volumeEvent(inputs ...obsws.InputVolume) obsws.Event {
	return obsws.Event{
		Type:    obsws.EventInputVolumeMeters,
		Payload: &obsws.InputVolumeMeters{Inputs: inputs},
	}
}

func TestRoute_VolumeMetersLeftRight(t *testing.T) {
	sink := &captureSink{}
	r := NewRouter("Mic", sink, zerolog.Nop())

	err := r.Route(context.Background(), volumeEvent(
		obsws.InputVolume{InputName: "Desktop", InputLevelsMul: [][]float64{{0.9, 0.9, 0.9}, {0.9, 0.9, 0.9}}},
		obsws.InputVolume{InputName: "Mic", InputLevelsMul: [][]float64{{0.1, 0.5, 0.6}, {0.2, 0.25, 0.3}}},
	))
	require.NoError(t, err)
	require.Len(t, sink.got, 1)
	assert.Equal(t, hud.AudioLevelsChanged{Input: "Mic", Left: 0.5, Right: 0.25}, sink.got[0])
}

func TestRoute_VolumeMetersEmptyLevelsHide(t *testing.T) {
	sink := &captureSink{}
	r := NewRouter("Mic", sink, zerolog.Nop())

	for i := 0; i < 3; i++ {
		err := r.Route(context.Background(), volumeEvent(obsws.InputVolume{InputName: "Mic"}))
		require.NoError(t, err)
	}
	require.Len(t, sink.got, 3)
	for _, n := range sink.got {
		assert.Equal(t, hud.AudioLevelsChanged{Input: "Mic", Hidden: true}, n)
	}
}

func TestRoute_VolumeMetersSingleChannelMalformed(t *testing.T) {
	sink := &captureSink{}
	r := NewRouter("Mic", sink, zerolog.Nop())

	err := r.Route(context.Background(), volumeEvent(
		obsws.InputVolume{InputName: "Mic", InputLevelsMul: [][]float64{{0.1, 0.5, 0.6}}},
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, obsws.ErrMalformed))
	assert.Equal(t, "missing_channel", obsws.MalformedReason(err))
	assert.Empty(t, sink.got)
}

func TestRoute_VolumeMetersShortChannelMalformed(t *testing.T) {
	r := NewRouter("Mic", &captureSink{}, zerolog.Nop())

	err := r.Route(context.Background(), volumeEvent(
		obsws.InputVolume{InputName: "Mic", InputLevelsMul: [][]float64{{0.1}, {0.2}}},
	))
	assert.Equal(t, "missing_peak", obsws.MalformedReason(err))
}

func TestRoute_VolumeMetersNoMatchOrNoInput(t *testing.T) {
	sink := &captureSink{}
	ev := volumeEvent(obsws.InputVolume{InputName: "Desktop", InputLevelsMul: [][]float64{{1, 1}, {1, 1}}})

	require.NoError(t, NewRouter("Mic", sink, zerolog.Nop()).Route(context.Background(), ev))
	require.NoError(t, NewRouter("", sink, zerolog.Nop()).Route(context.Background(), ev))
	assert.Empty(t, sink.got)
}

func TestRoute_VolumeMetersNormalizedName(t *testing.T) {
	sink := &captureSink{}
	// Configured in decomposed form, reported in composed form.
	r := NewRouter("Mike\u0301", sink, zerolog.Nop())

	err := r.Route(context.Background(), volumeEvent(
		obsws.InputVolume{InputName: "Mik\u00e9", InputLevelsMul: [][]float64{{0, 0.4}, {0, 0.3}}},
	))
	require.NoError(t, err)
	require.Len(t, sink.got, 1)
}

func TestRoute_RecordStateChanged(t *testing.T) {
	tests := []struct {
		state string
		want  hud.RecordingState
	}{
		{"Recording", hud.RecordingActive},
		{"Paused", hud.RecordingPaused},
		{obsws.OutputStarted, hud.RecordingActive},
		{obsws.OutputResumed, hud.RecordingActive},
		{obsws.OutputPaused, hud.RecordingPaused},
		{obsws.OutputStopped, hud.RecordingStopped},
		{"Stopped", hud.RecordingStopped},
	}
	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			sink := &captureSink{}
			r := NewRouter("", sink, zerolog.Nop())

			err := r.Route(context.Background(), obsws.Event{
				Type:    obsws.EventRecordStateChanged,
				Payload: &obsws.RecordStateChanged{OutputState: tt.state},
			})
			require.NoError(t, err)
			require.Len(t, sink.got, 1)
			assert.Equal(t, hud.RecordingChanged{State: tt.want, Source: hud.SourceEvent}, sink.got[0])
		})
	}
}

func TestRoute_OtherEventsIgnored(t *testing.T) {
	sink := &captureSink{}
	r := NewRouter("Mic", sink, zerolog.Nop())

	err := r.Route(context.Background(), obsws.Event{Type: "SceneTransitionStarted"})
	require.NoError(t, err)
	assert.Empty(t, sink.got)
}
