// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Nicosch44/obs-info-hud/internal/config"
	"github.com/Nicosch44/obs-info-hud/internal/log"
	"github.com/Nicosch44/obs-info-hud/internal/obsws"
)

// Session is the OBS connection loop.
type Session interface {
	Run(ctx context.Context, h obsws.Handler) error
}

// Poller sends the periodic requests.
type Poller interface {
	Run(ctx context.Context) error
}

// BackgroundSetter receives the hud.background key after a reload.
type BackgroundSetter interface {
	SetBackground(key string)
}

// Components are the long-lived parts an App runs.
type Components struct {
	Session    Session
	Handler    obsws.Handler
	Poller     Poller
	ConfigHold *config.ConfigHolder
	Background BackgroundSetter
}

// App owns the runtime lifecycle (session loop, poller, config watcher,
// reload signal) and delegates the HTTP listeners to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	c            Components
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator.
func NewApp(logger zerolog.Logger, manager Manager, c Components) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		c:            c,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts every subsystem and blocks until ctx is cancelled or one of
// them fails.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}
	if a.c.Session == nil || a.c.Handler == nil {
		return ErrMissingSession
	}

	g, ctx := errgroup.WithContext(ctx)

	// Watcher failures are not fatal.
	if a.c.ConfigHold != nil {
		if err := a.c.ConfigHold.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str(log.FieldEvent, "config.watcher_start_failed").Msg("failed to start config watcher")
		}
	}

	if a.c.ConfigHold != nil && a.c.Background != nil {
		applyCh := make(chan config.AppConfig, 1)
		a.c.ConfigHold.RegisterListener(applyCh)

		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					a.c.Background.SetBackground(cfg.HUD.Background)
				}
			}
		})
	}

	if a.c.ConfigHold != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str(log.FieldEvent, "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")
					if err := a.c.ConfigHold.Reload(ctx); err != nil {
						a.logger.Warn().Err(err).Str(log.FieldEvent, "config.reload_failed").Msg("config reload failed")
					}
				}
			}
		})
	}

	g.Go(func() error {
		if err := a.c.Session.Run(ctx, a.c.Handler); err != nil {
			return fmt.Errorf("obs session: %w", err)
		}
		return nil
	})

	if a.c.Poller != nil {
		g.Go(func() error {
			if err := a.c.Poller.Run(ctx); err != nil {
				return fmt.Errorf("poller: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}
