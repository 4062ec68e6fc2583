// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nicosch44/obs-info-hud/internal/config"
	"github.com/Nicosch44/obs-info-hud/internal/log"
)

// PerformStartupChecks validates the environment before the daemon starts.
// Listener conflicts are fatal; an unresolvable OBS host only warns because
// the session retries until the host appears.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if err := checkListenAddr(logger, "api", cfg.API.ListenAddr); err != nil {
		return fmt.Errorf("api listener check failed: %w", err)
	}
	if cfg.Metrics.Enabled {
		if err := checkListenAddr(logger, "metrics", cfg.Metrics.ListenAddr); err != nil {
			return fmt.Errorf("metrics listener check failed: %w", err)
		}
	}
	checkOBSHost(ctx, logger, cfg.OBS.Address)

	logger.Info().Msg("all startup checks passed")
	return nil
}

func checkListenAddr(logger zerolog.Logger, name, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("cannot listen on %s: %w", addr, err)
	}
	_ = ln.Close()
	logger.Info().Str("listener", name).Str(log.FieldListenAddr, addr).Msg("listen address is available")
	return nil
}

func checkOBSHost(ctx context.Context, logger zerolog.Logger, host string) {
	if net.ParseIP(host) != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := net.DefaultResolver.LookupHost(ctx, host); err != nil {
		logger.Warn().Err(err).Str("host", host).Msg("obs host does not resolve yet; session will keep retrying")
	}
}
