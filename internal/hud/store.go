// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package hud

import (
	"context"
	"sync"
	"time"
)

// RecordingView is the recording part of a Snapshot.
type RecordingView struct {
	State    RecordingState `json:"state"`
	Active   bool           `json:"active"`
	Paused   bool           `json:"paused"`
	Label    string         `json:"label"`
	Timecode string         `json:"timecode"`
	Size     string         `json:"size"`
}

// StreamingView is the streaming part of a Snapshot.
type StreamingView struct {
	Active      bool   `json:"active"`
	BitrateKbps Number `json:"bitrateKbps"`
	Bitrate     string `json:"bitrate"`
	Timecode    string `json:"timecode"`
	Service     string `json:"service,omitempty"`
	Platform    string `json:"platform"`
}

// AudioView is the watched-input part of a Snapshot.
type AudioView struct {
	Input   string `json:"input,omitempty"`
	Enabled bool   `json:"enabled"`
	Visible bool   `json:"visible"`
	Left    Number `json:"left"`
	Right   Number `json:"right"`
	Muted   bool   `json:"muted"`
}

// Snapshot is the current producer state as shown on the HUD.
type Snapshot struct {
	Connected    bool             `json:"connected"`
	Status       string           `json:"status"`
	Background   string           `json:"background,omitempty"`
	Recording    RecordingView    `json:"recording"`
	Streaming    StreamingView    `json:"streaming"`
	Profile      string           `json:"profile"`
	ProfileLabel string           `json:"profileLabel"`
	Stats        StatsChanged     `json:"stats"`
	FPS          FPSHealthChanged `json:"fps"`
	Audio        AudioView        `json:"audio"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	Revision     uint64           `json:"revision"`
}

// StoreOptions seeds a Store from configuration.
type StoreOptions struct {
	AudioInput string
	Background string
	Now        func() time.Time
}

// Store folds notifications into a Snapshot. It is a Sink and is safe for
// concurrent readers.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewStore creates a Store in the disconnected state.
func NewStore(opts StoreOptions) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		now: now,
		snap: Snapshot{
			Status:     StatusConnecting,
			Background: BackgroundImage(opts.Background),
			Audio: AudioView{
				Input:   opts.AudioInput,
				Enabled: opts.AudioInput != "",
				Visible: opts.AudioInput != "",
			},
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Notify applies n to the snapshot.
func (s *Store) Notify(_ context.Context, n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &s.snap
	switch v := n.(type) {
	case ConnectionChanged:
		snap.Connected = v.Connected
		snap.Status = v.Status
	case RecordingChanged:
		snap.Recording.State = v.State
		snap.Recording.Active = v.State.Active()
		snap.Recording.Paused = v.State.Paused()
		switch {
		case !v.State.Active():
			snap.Recording.Label = ""
			snap.Recording.Timecode = ""
			snap.Recording.Size = ""
		case v.Detail != nil:
			snap.Recording.Label = v.Detail.Label
			snap.Recording.Timecode = v.Detail.Timecode
			snap.Recording.Size = v.Detail.Size
		default:
			snap.Recording.Label = RecordLabel(v.State)
		}
	case StreamingChanged:
		snap.Streaming.Active = v.Active
		if v.Active {
			snap.Streaming.BitrateKbps = v.BitrateKbps
			snap.Streaming.Bitrate = v.Bitrate
			snap.Streaming.Timecode = v.Timecode
		}
	case PlatformChanged:
		snap.Streaming.Service = v.Service
		snap.Streaming.Platform = v.Label
	case ProfileChanged:
		snap.Profile = v.Name
		snap.ProfileLabel = v.Label
	case StatsChanged:
		snap.Stats = v
	case FPSHealthChanged:
		snap.FPS = v
	case AudioLevelsChanged:
		if v.Hidden {
			snap.Audio.Visible = false
		} else {
			snap.Audio.Visible = true
			snap.Audio.Left = v.Left
			snap.Audio.Right = v.Right
		}
	case MicMuteChanged:
		snap.Audio.Muted = v.Muted
	default:
		return
	}
	snap.UpdatedAt = s.now()
	snap.Revision++
}

// SetBackground replaces the background image key.
func (s *Store) SetBackground(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bg := BackgroundImage(key)
	if s.snap.Background == bg {
		return
	}
	s.snap.Background = bg
	s.snap.UpdatedAt = s.now()
	s.snap.Revision++
}
