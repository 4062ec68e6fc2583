// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	streamingActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "obshud_streaming_active",
		Help: "Whether the producer is currently streaming (1) or not (0)",
	})

	streamBitrate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "obshud_stream_bitrate_kbps",
		Help: "Last derived stream bitrate in kilobits per second",
	})

	recordingState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "obshud_recording_state",
		Help: "Recording state (active state=1; others 0)",
	}, []string{"state"})

	activeFPS = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "obshud_active_fps",
		Help: "Last reported render frame rate, rounded to one decimal",
	})

	fpsHealthRatio = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "obshud_fps_health_ratio",
		Help: "Ratio of active frame rate to configured frame rate",
	})

	frameLoss = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "obshud_frame_loss_percent",
		Help: "Frame loss percentages, by stage (output/render)",
	}, []string{"stage"})
)

// RecordingStates lists every label value used by the recording state gauge.
var RecordingStates = []string{"stopped", "recording", "paused"}

// SetStreaming records whether the stream output is active.
func SetStreaming(active bool) {
	streamingActive.Set(boolValue(active))
}

// SetStreamBitrate records the derived bitrate. Non-finite samples are skipped.
func SetStreamBitrate(kbps float64) {
	setFinite(streamBitrate, kbps)
}

// SetRecordingState records the active recording state.
func SetRecordingState(state string) {
	for _, s := range RecordingStates {
		recordingState.WithLabelValues(s).Set(boolValue(s == state))
	}
}

// SetActiveFPS records the rounded render frame rate.
func SetActiveFPS(fps float64) {
	setFinite(activeFPS, fps)
}

// SetFPSHealthRatio records the fps health ratio.
func SetFPSHealthRatio(ratio float64) {
	setFinite(fpsHealthRatio, ratio)
}

// SetFrameLoss records output and render frame loss percentages.
func SetFrameLoss(outputPct, renderPct float64) {
	setFinite(frameLoss.WithLabelValues("output"), outputPct)
	setFinite(frameLoss.WithLabelValues("render"), renderPct)
}

func setFinite(g prometheus.Gauge, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	g.Set(v)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
