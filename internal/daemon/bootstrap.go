// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon wires the OBS session, the HUD sinks and the HTTP
// listeners into one runnable process.
package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Nicosch44/obs-info-hud/internal/api"
	"github.com/Nicosch44/obs-info-hud/internal/config"
	"github.com/Nicosch44/obs-info-hud/internal/events"
	"github.com/Nicosch44/obs-info-hud/internal/health"
	"github.com/Nicosch44/obs-info-hud/internal/hud"
	"github.com/Nicosch44/obs-info-hud/internal/log"
	"github.com/Nicosch44/obs-info-hud/internal/obsws"
	"github.com/Nicosch44/obs-info-hud/internal/poller"
	"github.com/Nicosch44/obs-info-hud/internal/producer"
	"github.com/Nicosch44/obs-info-hud/internal/telemetry"
)

// ServiceName is reported in logs and trace resources.
const ServiceName = "obs-hud"

// Options configures Bootstrap.
type Options struct {
	Version string
	Config  config.AppConfig
	Holder  *config.ConfigHolder // optional; enables hot reload

	// SessionOptions are passed to obsws.NewManager, e.g. a test dialer.
	SessionOptions []obsws.Option
}

// Daemon is the wired process. App.Run blocks until shutdown.
type Daemon struct {
	App     *App
	Store   *hud.Store
	Session *obsws.Manager
	Health  *health.Manager
	Manager Manager
}

// Bootstrap builds every component from cfg. Redis and telemetry are
// optional: when they cannot be reached the daemon starts without them.
func Bootstrap(ctx context.Context, opts Options) (*Daemon, error) {
	cfg := opts.Config
	logger := log.WithComponent("daemon")

	var hooks []namedHook

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    ServiceName,
		ServiceVersion: opts.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	tracingService := ""
	switch {
	case err != nil:
		logger.Warn().Err(err).Str(log.FieldEvent, "telemetry.init_failed").Msg("telemetry initialization failed, continuing without tracing")
	case cfg.Telemetry.Enabled:
		tracingService = ServiceName + "-api"
		hooks = append(hooks, namedHook{name: "telemetry", hook: tp.Shutdown})
		logger.Info().
			Str(log.FieldEvent, "telemetry.initialized").
			Str("exporter", cfg.Telemetry.Exporter).
			Str("endpoint", cfg.Telemetry.Endpoint).
			Float64("sampling_rate", cfg.Telemetry.SamplingRate).
			Msg("telemetry initialized")
	}

	hm := health.NewManager(opts.Version)

	store := hud.NewStore(hud.StoreOptions{
		AudioInput: cfg.OBS.AudioInput,
		Background: cfg.HUD.Background,
	})
	sinks := []hud.Sink{store, hud.NewLogSink(log.WithComponent("hud"))}
	if cfg.Redis.Enabled() {
		if sink := dialRedisSink(ctx, cfg.Redis, logger); sink != nil {
			sinks = append(sinks, sink)
			hm.RegisterChecker(health.NewRedisChecker(sink.Client()))
			hooks = append(hooks, namedHook{name: "redis", hook: func(context.Context) error { return sink.Close() }})
		}
	}
	sink := hud.Multi(sinks...)

	router := events.NewRouter(cfg.OBS.AudioInput, sink, log.WithComponent("events"))
	pipeline := producer.New(sink, router, nil, log.WithComponent("producer"))

	session, err := obsws.NewManager(obsws.Config{
		URL:            cfg.OBS.URL(),
		Password:       cfg.OBS.Password,
		Subscriptions:  obsws.ComputeMask(cfg.OBS.AudioInput != ""),
		ReconnectDelay: cfg.OBS.ReconnectDelay,
		RequestTimeout: cfg.OBS.RequestTimeout,
		Correlation:    cfg.OBS.Correlation,
	}, opts.SessionOptions...)
	if err != nil {
		return nil, fmt.Errorf("create obs session: %w", err)
	}

	sched, err := poller.New(session, poller.Cadences{
		StreamStatus: cfg.Poll.StreamStatus,
		ProfileList:  cfg.Poll.ProfileList,
		Stats:        cfg.Poll.Stats,
		RecordStatus: cfg.Poll.RecordStatus,
		InputMute:    cfg.Poll.InputMute,
	}, cfg.OBS.AudioInput, log.WithComponent("poller"))
	if err != nil {
		return nil, fmt.Errorf("create poller: %w", err)
	}
	pipeline.SetFollowUps(sched)

	hm.RegisterChecker(health.NewSessionChecker(session))

	apiServer := api.New(api.Config{
		RateLimit:      cfg.API.RateLimit,
		AllowedOrigins: cfg.API.AllowedOrigins,
		TracingService: tracingService,
		EnableMetrics:  cfg.Metrics.Enabled,
	}, api.Deps{Health: hm, State: store, Session: session})

	deps := Deps{
		Logger:     logger,
		APIHandler: apiServer.Handler(),
	}
	if cfg.Metrics.Enabled {
		deps.MetricsHandler = metricsHandler()
		deps.MetricsAddr = cfg.Metrics.ListenAddr
	}
	mgr, err := NewManager(DefaultServerConfig(cfg.API.ListenAddr), deps)
	if err != nil {
		return nil, err
	}
	for _, h := range hooks {
		mgr.RegisterShutdownHook(h.name, h.hook)
	}

	app := NewApp(logger, mgr, Components{
		Session:    session,
		Handler:    pipeline,
		Poller:     sched,
		ConfigHold: opts.Holder,
		Background: store,
	})

	logger.Info().
		Str(log.FieldEvent, "daemon.bootstrapped").
		Str(log.FieldURL, cfg.OBS.URL()).
		Str("audio_input", cfg.OBS.AudioInput).
		Str("correlation", cfg.OBS.Correlation).
		Bool("redis", cfg.Redis.Enabled()).
		Bool("metrics", cfg.Metrics.Enabled).
		Msg("daemon components wired")

	return &Daemon{
		App:     app,
		Store:   store,
		Session: session,
		Health:  hm,
		Manager: mgr,
	}, nil
}

func dialRedisSink(ctx context.Context, rc config.RedisConfig, logger zerolog.Logger) *hud.RedisSink {
	hcfg := hud.RedisConfig{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
		Channel:  rc.Channel,
		Key:      rc.Key,
		TTL:      rc.TTL,
	}
	client, err := hud.DialRedis(ctx, hcfg)
	if err != nil {
		logger.Warn().
			Err(err).
			Str(log.FieldEvent, "redis.unavailable").
			Str("addr", rc.Addr).
			Msg("redis unreachable, publishing disabled for this run")
		return nil
	}
	return hud.NewRedisSink(client, hcfg, log.WithComponent("redis"))
}

func metricsHandler() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// WaitForShutdown returns a context cancelled on SIGINT or SIGTERM.
func WaitForShutdown() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
