// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type levelRecorder struct {
	mu     sync.Mutex
	levels []string
}

func (r *levelRecorder) set(level string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append(r.levels, level)
	return nil
}

func (r *levelRecorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.levels) == 0 {
		return ""
	}
	return r.levels[len(r.levels)-1]
}

func newTestHolder(t *testing.T, path string) (*ConfigHolder, *levelRecorder) {
	t.Helper()
	loader := NewLoader(path, "")
	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewConfigHolder(initial, loader)
	rec := &levelRecorder{}
	h.setLevel = rec.set
	h.debounce = 10 * time.Millisecond
	return h, rec
}

func TestConfigHolder_ReloadAppliesLogLevel(t *testing.T) {
	path := writeConfig(t, "logLevel: info\n")
	h, rec := newTestHolder(t, path)

	listener := make(chan AppConfig, 1)
	h.RegisterListener(listener)

	require.NoError(t, os.WriteFile(path, []byte("logLevel: debug\nobs:\n  port: 4460\n"), 0o600))
	require.NoError(t, h.Reload(context.Background()))

	assert.Equal(t, "debug", rec.last())
	assert.Equal(t, 4460, h.Get().OBS.Port)
	select {
	case cfg := <-listener:
		assert.Equal(t, "debug", cfg.LogLevel)
	default:
		t.Fatal("listener not notified")
	}
}

func TestConfigHolder_ReloadKeepsOldOnError(t *testing.T) {
	path := writeConfig(t, "logLevel: warn\n")
	h, rec := newTestHolder(t, path)

	require.NoError(t, os.WriteFile(path, []byte("bogus: true\n"), 0o600))
	require.Error(t, h.Reload(context.Background()))
	assert.Equal(t, "warn", h.Get().LogLevel)
	assert.Empty(t, rec.last())
}

func TestConfigHolder_WatcherReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "logLevel: info\n")
	h, rec := newTestHolder(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, h.StartWatcher(ctx))

	require.NoError(t, os.WriteFile(path, []byte("logLevel: error\n"), 0o600))
	require.Eventually(t, func() bool { return rec.last() == "error" }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, "error", h.Get().LogLevel)
}

func TestConfigHolder_WatcherDisabledWithoutFile(t *testing.T) {
	h := NewConfigHolder(Defaults(), NewLoader("", ""))
	assert.NoError(t, h.StartWatcher(context.Background()))
}

func TestConfigHolder_ReloadReportsAPIChangeAsRestartRequired(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	path := writeConfig(t, "api:\n  allowedOrigins: [\"https://a.example\"]\n")
	h, _ := newTestHolder(t, path)
	var buf bytes.Buffer
	h.logger = zerolog.New(&buf)

	require.NoError(t, os.WriteFile(path, []byte("api:\n  allowedOrigins: [\"https://b.example\"]\n"), 0o600))
	require.NoError(t, h.Reload(context.Background()))

	assert.Equal(t, []string{"https://b.example"}, h.Get().API.AllowedOrigins)
	assert.Contains(t, buf.String(), `"key":"api"`)
	assert.NotContains(t, buf.String(), `"key":"obs.address"`)
}
