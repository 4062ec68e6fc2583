// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

import (
	"encoding/json"
	"time"
)

// Event types routed by the HUD.
const (
	EventInputVolumeMeters  = "InputVolumeMeters"
	EventRecordStateChanged = "RecordStateChanged"
)

// Event is a decoded push event. Payload holds one of the typed event
// structs below, or nil for event types the HUD does not consume.
type Event struct {
	Type    string
	Intent  int
	Raw     json.RawMessage
	Payload any
}

// Response is a decoded request response handed to the Handler.
// Payload holds the typed struct matching Kind.
type Response struct {
	Kind    RequestKind
	ID      string
	Payload any
	// Request is the outstanding request the correlator resolved, if any.
	Request *OutstandingRequest
	// Latency is the time since Request was issued, zero when unmatched.
	Latency time.Duration
}

// StreamStatus is the GetStreamStatus response.
type StreamStatus struct {
	OutputActive        bool    `json:"outputActive"`
	OutputReconnecting  bool    `json:"outputReconnecting"`
	OutputTimecode      string  `json:"outputTimecode"`
	OutputDuration      float64 `json:"outputDuration"`
	OutputCongestion    float64 `json:"outputCongestion"`
	OutputBytes         uint64  `json:"outputBytes"`
	OutputSkippedFrames uint64  `json:"outputSkippedFrames"`
	OutputTotalFrames   uint64  `json:"outputTotalFrames"`
}

// StreamServiceSettings is the GetStreamServiceSettings response.
type StreamServiceSettings struct {
	StreamServiceType     string         `json:"streamServiceType"`
	StreamServiceSettings map[string]any `json:"streamServiceSettings"`
}

// Service returns the configured platform name, if the settings carry one.
func (s *StreamServiceSettings) Service() (string, bool) {
	if s == nil || s.StreamServiceSettings == nil {
		return "", false
	}
	v, ok := s.StreamServiceSettings["service"].(string)
	return v, ok
}

// ProfileList is the GetProfileList response.
type ProfileList struct {
	CurrentProfileName string   `json:"currentProfileName"`
	Profiles           []string `json:"profiles"`
}

// Stats is the GetStats response.
type Stats struct {
	CPUUsage                         float64 `json:"cpuUsage"`
	MemoryUsage                      float64 `json:"memoryUsage"`
	AvailableDiskSpace               float64 `json:"availableDiskSpace"`
	ActiveFPS                        float64 `json:"activeFps"`
	AverageFrameRenderTime           float64 `json:"averageFrameRenderTime"`
	RenderSkippedFrames              uint64  `json:"renderSkippedFrames"`
	RenderTotalFrames                uint64  `json:"renderTotalFrames"`
	OutputSkippedFrames              uint64  `json:"outputSkippedFrames"`
	OutputTotalFrames                uint64  `json:"outputTotalFrames"`
	WebSocketSessionIncomingMessages uint64  `json:"webSocketSessionIncomingMessages"`
	WebSocketSessionOutgoingMessages uint64  `json:"webSocketSessionOutgoingMessages"`
}

// VideoSettings is the GetVideoSettings response.
type VideoSettings struct {
	FPSNumerator   int64 `json:"fpsNumerator"`
	FPSDenominator int64 `json:"fpsDenominator"`
	BaseWidth      int64 `json:"baseWidth"`
	BaseHeight     int64 `json:"baseHeight"`
	OutputWidth    int64 `json:"outputWidth"`
	OutputHeight   int64 `json:"outputHeight"`
}

// RecordStatus is the GetRecordStatus response.
type RecordStatus struct {
	OutputActive   bool    `json:"outputActive"`
	OutputPaused   bool    `json:"outputPaused"`
	OutputTimecode string  `json:"outputTimecode"`
	OutputDuration float64 `json:"outputDuration"`
	OutputBytes    uint64  `json:"outputBytes"`
}

// InputMute is the GetInputMute response.
type InputMute struct {
	InputMuted bool `json:"inputMuted"`
}

// InputVolumeMeters is the InputVolumeMeters event.
type InputVolumeMeters struct {
	Inputs []InputVolume `json:"inputs"`
}

// InputVolume carries per-channel levels for one input. Each channel is
// [magnitude, peak, inputPeak] as linear multipliers.
type InputVolume struct {
	InputName      string      `json:"inputName"`
	InputLevelsMul [][]float64 `json:"inputLevelsMul"`
}

// RecordStateChanged is the RecordStateChanged event.
type RecordStateChanged struct {
	OutputActive bool    `json:"outputActive"`
	OutputState  string  `json:"outputState"`
	OutputPath   *string `json:"outputPath"`
}

// Output states carried by RecordStateChanged.
const (
	OutputStarting = "OBS_WEBSOCKET_OUTPUT_STARTING"
	OutputStarted  = "OBS_WEBSOCKET_OUTPUT_STARTED"
	OutputStopping = "OBS_WEBSOCKET_OUTPUT_STOPPING"
	OutputStopped  = "OBS_WEBSOCKET_OUTPUT_STOPPED"
	OutputPaused   = "OBS_WEBSOCKET_OUTPUT_PAUSED"
	OutputResumed  = "OBS_WEBSOCKET_OUTPUT_RESUMED"
)

func newResponsePayload(kind RequestKind) any {
	switch kind {
	case KindGetStreamStatus:
		return &StreamStatus{}
	case KindGetStreamServiceSettings:
		return &StreamServiceSettings{}
	case KindGetProfileList:
		return &ProfileList{}
	case KindGetStats:
		return &Stats{}
	case KindGetVideoSettings:
		return &VideoSettings{}
	case KindGetRecordStatus:
		return &RecordStatus{}
	case KindGetInputMute:
		return &InputMute{}
	default:
		return nil
	}
}

func newEventPayload(eventType string) any {
	switch eventType {
	case EventInputVolumeMeters:
		return &InputVolumeMeters{}
	case EventRecordStateChanged:
		return &RecordStateChanged{}
	default:
		return nil
	}
}

// DecodeResponse validates raw against the schema for kind and decodes it
// into the matching typed payload.
func (v *Validator) DecodeResponse(kind RequestKind, raw json.RawMessage) (any, error) {
	target := newResponsePayload(kind)
	if target == nil {
		return nil, Malformed(kind.String(), "unknown_kind", nil)
	}
	if err := v.decode(kind.String(), raw, target); err != nil {
		return nil, err
	}
	return target, nil
}

// DecodeEvent validates and decodes a routed event. Event types the HUD
// does not consume decode to a nil payload without error.
func (v *Validator) DecodeEvent(eventType string, raw json.RawMessage) (any, error) {
	target := newEventPayload(eventType)
	if target == nil {
		return nil, nil
	}
	if err := v.decode(eventType, raw, target); err != nil {
		return nil, err
	}
	return target, nil
}
