// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nicosch44/obs-info-hud/internal/config"
	"github.com/Nicosch44/obs-info-hud/internal/daemon"
	"github.com/Nicosch44/obs-info-hud/internal/health"
	obslog "github.com/Nicosch44/obs-info-hud/internal/log"
	"github.com/Nicosch44/obs-info-hud/internal/version"
)

func runCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daemon (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(*configPath)
		},
	}
}

func runDaemon(configPath string) error {
	// Safe defaults until the configuration is loaded.
	obslog.Configure(obslog.Config{
		Level:   "info",
		Service: daemon.ServiceName,
		Version: version.Version,
	})

	loader := config.NewLoader(configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	obslog.Configure(obslog.Config{
		Level:   cfg.LogLevel,
		Service: daemon.ServiceName,
		Version: version.Version,
	})
	logger := obslog.WithComponent("main")

	if configPath != "" {
		logger.Info().
			Str(obslog.FieldEvent, "config.loaded").
			Str("source", "file").
			Str("path", configPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str(obslog.FieldEvent, "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	ctx, stop := daemon.WaitForShutdown()
	defer stop()

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		return fmt.Errorf("startup checks: %w", err)
	}

	d, err := daemon.Bootstrap(ctx, daemon.Options{
		Version: version.Version,
		Config:  cfg,
		Holder:  config.NewConfigHolder(cfg, loader),
	})
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	logger.Info().
		Str(obslog.FieldEvent, "startup").
		Str(obslog.FieldVersion, version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str(obslog.FieldListenAddr, cfg.API.ListenAddr).
		Bool("auth", cfg.OBS.Password != "").
		Msg("starting obs-hud")

	if err := d.App.Run(ctx); err != nil {
		return fmt.Errorf("daemon: %w", err)
	}
	logger.Info().Str(obslog.FieldEvent, "shutdown").Msg("server exiting")
	return nil
}
