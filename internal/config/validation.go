// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"github.com/Nicosch44/obs-info-hud/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.LogLevel("logLevel", cfg.LogLevel)

	v.Host("obs.address", cfg.OBS.Address)
	v.Port("obs.port", cfg.OBS.Port)
	v.PositiveDuration("obs.reconnectDelay", cfg.OBS.ReconnectDelay)
	v.PositiveDuration("obs.requestTimeout", cfg.OBS.RequestTimeout)
	v.OneOf("obs.correlation", cfg.OBS.Correlation, []string{CorrelationKind, CorrelationID})

	v.PositiveDuration("poll.streamStatus", cfg.Poll.StreamStatus)
	v.PositiveDuration("poll.profileList", cfg.Poll.ProfileList)
	v.PositiveDuration("poll.stats", cfg.Poll.Stats)
	v.PositiveDuration("poll.recordStatus", cfg.Poll.RecordStatus)
	if cfg.OBS.AudioInput != "" {
		v.PositiveDuration("poll.inputMute", cfg.Poll.InputMute)
	}

	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr)
	v.Range("api.rateLimit", cfg.API.RateLimit, 0, 100000)

	if cfg.Metrics.Enabled {
		v.ListenAddr("metrics.listenAddr", cfg.Metrics.ListenAddr)
		if cfg.Metrics.ListenAddr == cfg.API.ListenAddr {
			v.AddError("metrics.listenAddr", "must differ from api.listenAddr", cfg.Metrics.ListenAddr)
		}
	}

	if cfg.Redis.Enabled() {
		v.NotEmpty("redis.channel", cfg.Redis.Channel)
		v.NotEmpty("redis.key", cfg.Redis.Key)
		v.Range("redis.db", cfg.Redis.DB, 0, 15)
		if cfg.Redis.TTL < 0 {
			v.AddError("redis.ttl", "ttl cannot be negative", cfg.Redis.TTL)
		}
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{ExporterGRPC, ExporterHTTP})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("telemetry.samplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	return v.Err()
}
