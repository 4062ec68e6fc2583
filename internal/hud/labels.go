// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package hud

// Connection status texts.
const (
	StatusConnected  = "Connected!"
	StatusConnecting = "Connecting..."
)

// ConnectionStatus returns the status text for the connection indicator.
func ConnectionStatus(connected bool) string {
	if connected {
		return StatusConnected
	}
	return StatusConnecting
}

// PlatformLabel names the streaming platform. ok is false when the stream
// service settings carry no service name.
func PlatformLabel(service string, ok bool) string {
	if !ok {
		return "🔴 LIVE"
	}
	switch service {
	case "Twitch":
		return "🟣 Twitch"
	case "YouTube":
		return "🔴 YouTube"
	default:
		return "🔴 " + service
	}
}

// RecordLabel is the recording badge text; empty when stopped.
func RecordLabel(s RecordingState) string {
	switch s {
	case RecordingPaused:
		return "PAUSED ⏸"
	case RecordingActive:
		return "REC 🔴"
	default:
		return ""
	}
}

// ProfileLabel is the profile line text.
func ProfileLabel(name string) string {
	return "Profile: " + name
}

// BackgroundImage maps a background key to its frame image path.
func BackgroundImage(key string) string {
	if key == "" {
		return ""
	}
	return "frames/" + key + ".png"
}

// StatsLine joins the formatted resource figures.
func StatsLine(cpu, memory, renderTime string) string {
	return "CPU: " + cpu + " • MEM: " + memory + " • RENDER TIME: " + renderTime
}

// AdvancedStatsLine joins the formatted frame loss figures.
func AdvancedStatsLine(missed, skipped string) string {
	return "MISSED FRAMES " + missed + " • SKIPPED FRAMES " + skipped
}
