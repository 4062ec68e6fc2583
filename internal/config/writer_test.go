// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile_LoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs-hud.yaml")
	cfg := Defaults()
	cfg.OBS.Password = "secret"
	cfg.OBS.AudioInput = "Mic"
	cfg.Poll.Stats = 2 * time.Second

	require.NoError(t, WriteFile(path, cfg))

	loaded, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshal_RedactsSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.OBS.Password = "secret"
	cfg.Redis.Password = "redis-secret"

	out, err := Marshal(cfg, false)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
	assert.Contains(t, string(out), Redacted)

	out, err = Marshal(cfg, true)
	require.NoError(t, err)
	assert.Contains(t, string(out), "redis-secret")
}
