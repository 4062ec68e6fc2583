// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	obslog "github.com/Nicosch44/obs-info-hud/internal/log"
)

// ConfigHolder holds configuration with atomic reloading capability.
// The holder applies the log level itself and hands every reloaded config
// to registered listeners, which may apply presentation settings such as
// hud.background. Connection and listener changes are logged as requiring
// a restart.
type ConfigHolder struct {
	mu      sync.RWMutex
	current AppConfig
	loader  *Loader
	watcher *fsnotify.Watcher
	logger  zerolog.Logger

	debounce  time.Duration
	setLevel  func(string) error
	reloadMu  sync.RWMutex
	listeners []chan<- AppConfig
}

// NewConfigHolder creates a new configuration holder with initial config.
func NewConfigHolder(initial AppConfig, loader *Loader) *ConfigHolder {
	return &ConfigHolder{
		current:  initial,
		loader:   loader,
		logger:   obslog.WithComponent("config"),
		debounce: 500 * time.Millisecond,
		setLevel: obslog.SetLevel,
	}
}

// Get returns the current configuration (thread-safe read).
func (h *ConfigHolder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload reloads configuration from file and validates it.
// If loading or validation fails, the old configuration is kept.
func (h *ConfigHolder) Reload(_ context.Context) error {
	h.logger.Info().Str(obslog.FieldEvent, "config.reload_start").Msg("reloading configuration")

	newCfg, err := h.loader.Load()
	if err != nil {
		h.logger.Error().
			Err(err).
			Str(obslog.FieldEvent, "config.reload_failed").
			Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.current
	h.current = newCfg
	h.mu.Unlock()

	if oldCfg.LogLevel != newCfg.LogLevel {
		if err := h.setLevel(newCfg.LogLevel); err != nil {
			h.logger.Warn().Err(err).Str(obslog.FieldEvent, "config.log_level_failed").Msg("could not apply log level")
		} else {
			h.logger.Info().
				Str(obslog.FieldEvent, "config.log_level_applied").
				Str("old", oldCfg.LogLevel).
				Str("new", newCfg.LogLevel).
				Msg("log level changed")
		}
	}
	h.logRestartRequired(oldCfg, newCfg)
	h.notifyListeners(newCfg)

	h.logger.Info().
		Str(obslog.FieldEvent, "config.reload_success").
		Msg("configuration reloaded successfully")
	return nil
}

// StartWatcher starts watching the config file for changes.
// If no file is configured, this is a no-op (config comes from ENV only).
func (h *ConfigHolder) StartWatcher(ctx context.Context) error {
	path := h.loader.Path()
	if path == "" {
		h.logger.Info().
			Str(obslog.FieldEvent, "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config file: %w", err)
	}
	h.watcher = watcher

	h.logger.Info().
		Str(obslog.FieldEvent, "config.watcher_started").
		Str("path", path).
		Msg("watching config file for changes")

	go h.watchLoop(ctx, watcher)
	return nil
}

func (h *ConfigHolder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(obslog.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			// Write and Create cover in-place edits and editors that replace the file.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				h.logger.Debug().
					Str(obslog.FieldEvent, "config.file_changed").
					Str(obslog.FieldOp, event.Op.String()).
					Msg("config file changed")

				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(h.debounce, func() {
					if ctx.Err() != nil {
						return
					}
					if err := h.Reload(ctx); err != nil {
						h.logger.Error().
							Err(err).
							Str(obslog.FieldEvent, "config.auto_reload_failed").
							Msg("automatic config reload failed")
					}
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str(obslog.FieldEvent, "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// RegisterListener registers a channel to receive config reload notifications.
// Sends are non-blocking; the caller owns the channel.
func (h *ConfigHolder) RegisterListener(ch chan<- AppConfig) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *ConfigHolder) notifyListeners(newCfg AppConfig) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()

	for _, ch := range h.listeners {
		select {
		case ch <- newCfg:
		default:
			h.logger.Warn().
				Str(obslog.FieldEvent, "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

func (h *ConfigHolder) logRestartRequired(old, newCfg AppConfig) {
	changed := func(key string) {
		h.logger.Warn().
			Str(obslog.FieldEvent, "config.restart_required").
			Str("key", key).
			Msg("config changed: takes effect after restart")
	}
	if old.OBS.URL() != newCfg.OBS.URL() {
		changed("obs.address")
	}
	if old.OBS.Password != newCfg.OBS.Password {
		changed("obs.password")
	}
	if old.OBS.AudioInput != newCfg.OBS.AudioInput {
		changed("obs.audioInput")
	}
	if old.Poll != newCfg.Poll {
		changed("poll")
	}
	if !cmp.Equal(old.API, newCfg.API) {
		changed("api")
	}
	if old.Metrics != newCfg.Metrics {
		changed("metrics")
	}
	if old.Redis != newCfg.Redis {
		changed("redis")
	}
	if old.Telemetry != newCfg.Telemetry {
		changed("telemetry")
	}
}
