// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package hud

import "github.com/Nicosch44/obs-info-hud/internal/derive"

// Notification topics.
const (
	TopicConnection = "connection"
	TopicRecording  = "recording"
	TopicStreaming  = "streaming"
	TopicPlatform   = "platform"
	TopicProfile    = "profile"
	TopicStats      = "stats"
	TopicFPSHealth  = "fps_health"
	TopicAudio      = "audio"
	TopicMicMute    = "mic_mute"
)

// Notification is one presentation update.
type Notification interface {
	Topic() string
}

// Update sources for recording state.
const (
	SourceEvent = "event"
	SourcePoll  = "poll"
)

// ConnectionChanged reports the session connected/disconnected.
type ConnectionChanged struct {
	Connected bool   `json:"connected"`
	Status    string `json:"status"`
}

// RecordingDetail carries the polled recording labels.
type RecordingDetail struct {
	Label    string `json:"label"`
	Timecode string `json:"timecode"`
	Size     string `json:"size"`
}

// RecordingChanged reports the normalized recording state. Detail is only
// set for polled updates; pushed events change the state alone.
type RecordingChanged struct {
	State  RecordingState   `json:"state"`
	Source string           `json:"source"`
	Detail *RecordingDetail `json:"detail,omitempty"`
}

// StreamingChanged reports stream output state and bitrate.
type StreamingChanged struct {
	Active      bool   `json:"active"`
	BitrateKbps Number `json:"bitrateKbps"`
	Bitrate     string `json:"bitrate,omitempty"`
	Timecode    string `json:"timecode,omitempty"`
}

// PlatformChanged reports the configured streaming platform.
type PlatformChanged struct {
	Service string `json:"service,omitempty"`
	Label   string `json:"label"`
}

// ProfileChanged reports the active profile.
type ProfileChanged struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// StatsChanged reports render and output statistics.
type StatsChanged struct {
	ActiveFPS        Number `json:"activeFps"`
	CPUUsage         Number `json:"cpuUsage"`
	MemoryUsage      Number `json:"memoryUsage"`
	RenderTimeMs     Number `json:"renderTimeMs"`
	MissedFramesPct  Number `json:"missedFramesPct"`
	RenderSkippedPct Number `json:"renderSkippedPct"`

	FPS          string `json:"fps"`
	Line         string `json:"line"`
	AdvancedLine string `json:"advancedLine"`
}

// FPSHealthChanged reports the render rate against the configured rate.
type FPSHealthChanged struct {
	Ratio    Number      `json:"ratio"`
	Tier     derive.Tier `json:"tier"`
	Color    string      `json:"color"`
	MeterPct Number      `json:"meterPct"`
}

// AudioLevelsChanged reports the watched input's left/right peak levels as
// linear multipliers. Hidden is set when the input reported no channels.
type AudioLevelsChanged struct {
	Input  string `json:"input"`
	Hidden bool   `json:"hidden"`
	Left   Number `json:"left"`
	Right  Number `json:"right"`
}

// MicMuteChanged reports the watched input's mute flag.
type MicMuteChanged struct {
	Muted bool `json:"muted"`
}

func (ConnectionChanged) Topic() string  { return TopicConnection }
func (RecordingChanged) Topic() string   { return TopicRecording }
func (StreamingChanged) Topic() string   { return TopicStreaming }
func (PlatformChanged) Topic() string    { return TopicPlatform }
func (ProfileChanged) Topic() string     { return TopicProfile }
func (StatsChanged) Topic() string       { return TopicStats }
func (FPSHealthChanged) Topic() string   { return TopicFPSHealth }
func (AudioLevelsChanged) Topic() string { return TopicAudio }
func (MicMuteChanged) Topic() string     { return TopicMicMute }
