// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Nicosch44/obs-info-hud/internal/validate"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // keys the last Load consulted
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the configured file path, empty for ENV-only configuration.
func (l *Loader) Path() string { return l.configPath }

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel: "info",
		OBS: OBSConfig{
			Address:        "127.0.0.1",
			Port:           4455,
			ReconnectDelay: 5 * time.Second,
			RequestTimeout: 10 * time.Second,
			Correlation:    CorrelationKind,
		},
		Poll: PollConfig{
			StreamStatus: time.Second,
			ProfileList:  200 * time.Millisecond,
			Stats:        time.Second,
			RecordStatus: 500 * time.Millisecond,
			InputMute:    500 * time.Millisecond,
		},
		API: APIConfig{
			ListenAddr: ":8089",
			RateLimit:  600,
		},
		Metrics: MetricsConfig{
			Enabled:    true,
			ListenAddr: ":9099",
		},
		Redis: RedisConfig{
			Channel: "obshud:events",
			Key:     "obshud:state",
			TTL:     time.Hour,
		},
		Telemetry: TelemetryConfig{
			Exporter:     ExporterGRPC,
			Endpoint:     "localhost:4317",
			Environment:  "production",
			SamplingRate: 1.0,
		},
	}
}

// Load loads configuration with precedence: ENV > File > Defaults.
// Order: parse file (strict), apply env, normalize, validate.
func (l *Loader) Load() (AppConfig, error) {
	l.ConsumedEnvKeys = make(map[string]struct{})
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	if err := l.mergeEnvConfig(&cfg); err != nil {
		return cfg, err
	}

	host, err := validate.NormalizeHost(cfg.OBS.Address)
	if err == nil {
		cfg.OBS.Address = host
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields cause an error wrapping ErrUnknownConfigField.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile strictly decodes a YAML document into a FileConfig.
func ParseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}

	obs := src.OBS
	switch {
	case obs.Address != "" && obs.Host != "" && obs.Address != obs.Host:
		return fmt.Errorf("%w: obs.address=%q obs.host=%q", ErrAliasConflict, obs.Address, obs.Host)
	case obs.Address != "":
		dst.OBS.Address = obs.Address
	case obs.Host != "":
		dst.OBS.Address = obs.Host
	}
	setIfPresent(&dst.OBS.Port, obs.Port)
	setIfPresent(&dst.OBS.Password, obs.Password)
	setIfPresent(&dst.OBS.AudioInput, obs.AudioInput)
	setIfPresent(&dst.OBS.ReconnectDelay, obs.ReconnectDelay)
	setIfPresent(&dst.OBS.RequestTimeout, obs.RequestTimeout)
	if obs.Correlation != "" {
		dst.OBS.Correlation = obs.Correlation
	}

	setIfPresent(&dst.HUD.Background, src.HUD.Background)

	setIfPresent(&dst.Poll.StreamStatus, src.Poll.StreamStatus)
	setIfPresent(&dst.Poll.ProfileList, src.Poll.ProfileList)
	setIfPresent(&dst.Poll.Stats, src.Poll.Stats)
	setIfPresent(&dst.Poll.RecordStatus, src.Poll.RecordStatus)
	setIfPresent(&dst.Poll.InputMute, src.Poll.InputMute)

	if src.API.ListenAddr != "" {
		dst.API.ListenAddr = src.API.ListenAddr
	}
	setIfPresent(&dst.API.RateLimit, src.API.RateLimit)
	if len(src.API.AllowedOrigins) > 0 {
		dst.API.AllowedOrigins = append([]string(nil), src.API.AllowedOrigins...)
	}

	setIfPresent(&dst.Metrics.Enabled, src.Metrics.Enabled)
	if src.Metrics.ListenAddr != "" {
		dst.Metrics.ListenAddr = src.Metrics.ListenAddr
	}

	if src.Redis.Addr != "" {
		dst.Redis.Addr = src.Redis.Addr
	}
	setIfPresent(&dst.Redis.Password, src.Redis.Password)
	setIfPresent(&dst.Redis.DB, src.Redis.DB)
	if src.Redis.Channel != "" {
		dst.Redis.Channel = src.Redis.Channel
	}
	if src.Redis.Key != "" {
		dst.Redis.Key = src.Redis.Key
	}
	setIfPresent(&dst.Redis.TTL, src.Redis.TTL)

	setIfPresent(&dst.Telemetry.Enabled, src.Telemetry.Enabled)
	if src.Telemetry.Exporter != "" {
		dst.Telemetry.Exporter = src.Telemetry.Exporter
	}
	if src.Telemetry.Endpoint != "" {
		dst.Telemetry.Endpoint = src.Telemetry.Endpoint
	}
	if src.Telemetry.Environment != "" {
		dst.Telemetry.Environment = src.Telemetry.Environment
	}
	setIfPresent(&dst.Telemetry.SamplingRate, src.Telemetry.SamplingRate)
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) error {
	addr, addrSet := os.LookupEnv(EnvPrefix + "ADDRESS")
	host, hostSet := os.LookupEnv(EnvPrefix + "HOST")
	if addrSet && hostSet && addr != "" && host != "" && addr != host {
		return fmt.Errorf("%w: %sADDRESS=%q %sHOST=%q", ErrAliasConflict, EnvPrefix, addr, EnvPrefix, host)
	}
	l.ConsumedEnvKeys[EnvPrefix+"ADDRESS"] = struct{}{}
	l.ConsumedEnvKeys[EnvPrefix+"HOST"] = struct{}{}
	cfg.OBS.Address = ParseStringWithAlias(EnvPrefix+"ADDRESS", EnvPrefix+"HOST", cfg.OBS.Address)

	cfg.LogLevel = l.envString(EnvPrefix+"LOG_LEVEL", cfg.LogLevel)

	cfg.OBS.Port = l.envInt(EnvPrefix+"PORT", cfg.OBS.Port)
	cfg.OBS.Password = l.envString(EnvPrefix+"PASSWORD", cfg.OBS.Password)
	cfg.OBS.AudioInput = l.envString(EnvPrefix+"AUDIO", cfg.OBS.AudioInput)
	cfg.OBS.ReconnectDelay = l.envDuration(EnvPrefix+"RECONNECT_DELAY", cfg.OBS.ReconnectDelay)
	cfg.OBS.RequestTimeout = l.envDuration(EnvPrefix+"REQUEST_TIMEOUT", cfg.OBS.RequestTimeout)
	cfg.OBS.Correlation = l.envString(EnvPrefix+"CORRELATION", cfg.OBS.Correlation)

	cfg.HUD.Background = l.envString(EnvPrefix+"BACKGROUND", cfg.HUD.Background)

	cfg.Poll.StreamStatus = l.envDuration(EnvPrefix+"POLL_STREAM_STATUS", cfg.Poll.StreamStatus)
	cfg.Poll.ProfileList = l.envDuration(EnvPrefix+"POLL_PROFILE_LIST", cfg.Poll.ProfileList)
	cfg.Poll.Stats = l.envDuration(EnvPrefix+"POLL_STATS", cfg.Poll.Stats)
	cfg.Poll.RecordStatus = l.envDuration(EnvPrefix+"POLL_RECORD_STATUS", cfg.Poll.RecordStatus)
	cfg.Poll.InputMute = l.envDuration(EnvPrefix+"POLL_INPUT_MUTE", cfg.Poll.InputMute)

	cfg.API.ListenAddr = l.envString(EnvPrefix+"LISTEN", cfg.API.ListenAddr)
	cfg.API.RateLimit = l.envInt(EnvPrefix+"API_RATE_LIMIT", cfg.API.RateLimit)
	if origins := l.envString(EnvPrefix+"ALLOWED_ORIGINS", ""); origins != "" {
		cfg.API.AllowedOrigins = splitList(origins)
	}

	cfg.Metrics.Enabled = l.envBool(EnvPrefix+"METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.ListenAddr = l.envString(EnvPrefix+"METRICS_LISTEN", cfg.Metrics.ListenAddr)

	cfg.Redis.Addr = l.envString(EnvPrefix+"REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = l.envString(EnvPrefix+"REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = l.envInt(EnvPrefix+"REDIS_DB", cfg.Redis.DB)
	cfg.Redis.Channel = l.envString(EnvPrefix+"REDIS_CHANNEL", cfg.Redis.Channel)
	cfg.Redis.Key = l.envString(EnvPrefix+"REDIS_KEY", cfg.Redis.Key)
	cfg.Redis.TTL = l.envDuration(EnvPrefix+"REDIS_TTL", cfg.Redis.TTL)

	cfg.Telemetry.Enabled = l.envBool(EnvPrefix+"OTEL_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvPrefix+"OTEL_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvPrefix+"OTEL_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.Environment = l.envString(EnvPrefix+"OTEL_ENVIRONMENT", cfg.Telemetry.Environment)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvPrefix+"OTEL_SAMPLING_RATE", cfg.Telemetry.SamplingRate)
	return nil
}

// splitList parses a comma-separated env value, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
