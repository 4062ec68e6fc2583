// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package hud

import "fmt"

// RecordingState is Stopped, or Active with a paused flag. Pushed events
// and polled status normalize to the same value.
type RecordingState int

const (
	RecordingStopped RecordingState = iota
	RecordingActive
	RecordingPaused
)

// Active reports whether a recording is in progress, paused or not.
func (s RecordingState) Active() bool { return s == RecordingActive || s == RecordingPaused }

// Paused reports whether an active recording is paused.
func (s RecordingState) Paused() bool { return s == RecordingPaused }

func (s RecordingState) String() string {
	switch s {
	case RecordingActive:
		return "recording"
	case RecordingPaused:
		return "paused"
	default:
		return "stopped"
	}
}

// MarshalText encodes the state by name.
func (s RecordingState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *RecordingState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "recording":
		*s = RecordingActive
	case "paused":
		*s = RecordingPaused
	case "stopped", "":
		*s = RecordingStopped
	default:
		return fmt.Errorf("unknown recording state %q", b)
	}
	return nil
}

// RecordingFromStatus normalizes a polled record status.
func RecordingFromStatus(active, paused bool) RecordingState {
	switch {
	case !active:
		return RecordingStopped
	case paused:
		return RecordingPaused
	default:
		return RecordingActive
	}
}

// RecordingFromOutputState normalizes a pushed outputState. Unrecognized
// values, including the transitional starting/stopping states, are Stopped.
func RecordingFromOutputState(state string) RecordingState {
	switch state {
	case "Recording", "OBS_WEBSOCKET_OUTPUT_STARTED", "OBS_WEBSOCKET_OUTPUT_RESUMED":
		return RecordingActive
	case "Paused", "OBS_WEBSOCKET_OUTPUT_PAUSED":
		return RecordingPaused
	default:
		return RecordingStopped
	}
}
