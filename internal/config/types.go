// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"net"
	"strconv"
	"time"
)

// Correlation modes.
const (
	CorrelationKind = "kind"
	CorrelationID   = "id"
)

// Telemetry exporter types.
const (
	ExporterGRPC = "grpc"
	ExporterHTTP = "http"
)

// AppConfig is the effective, validated configuration.
type AppConfig struct {
	Version   string          `yaml:"-"`
	LogLevel  string          `yaml:"logLevel"`
	OBS       OBSConfig       `yaml:"obs"`
	HUD       HUDConfig       `yaml:"hud"`
	Poll      PollConfig      `yaml:"poll"`
	API       APIConfig       `yaml:"api"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Redis     RedisConfig     `yaml:"redis"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// OBSConfig holds the OBS websocket connection settings.
type OBSConfig struct {
	Address        string        `yaml:"address"`
	Port           int           `yaml:"port"`
	Password       string        `yaml:"password"`
	AudioInput     string        `yaml:"audioInput"`
	ReconnectDelay time.Duration `yaml:"reconnectDelay"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	Correlation    string        `yaml:"correlation"`
}

// URL returns the websocket endpoint.
func (o OBSConfig) URL() string {
	return "ws://" + net.JoinHostPort(o.Address, strconv.Itoa(o.Port))
}

// HUDConfig holds presentation settings.
type HUDConfig struct {
	Background string `yaml:"background"`
}

// PollConfig holds the polling cadences.
type PollConfig struct {
	StreamStatus time.Duration `yaml:"streamStatus"`
	ProfileList  time.Duration `yaml:"profileList"`
	Stats        time.Duration `yaml:"stats"`
	RecordStatus time.Duration `yaml:"recordStatus"`
	InputMute    time.Duration `yaml:"inputMute"`
}

// APIConfig holds the HTTP API settings.
type APIConfig struct {
	ListenAddr string `yaml:"listenAddr"`
	RateLimit  int    `yaml:"rateLimit"` // requests per minute per client, 0 disables

	// AllowedOrigins lists CORS origins; empty or "*" allows any.
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// MetricsConfig holds the Prometheus listener settings.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listenAddr"`
}

// RedisConfig holds the optional Redis publisher settings.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Channel  string        `yaml:"channel"`
	Key      string        `yaml:"key"`
	TTL      time.Duration `yaml:"ttl"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// TelemetryConfig holds the OpenTelemetry tracing settings.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	Environment  string  `yaml:"environment"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// FileConfig mirrors the YAML file. Pointers distinguish "unset" from the
// zero value so that only keys present in the file override defaults.
type FileConfig struct {
	LogLevel  string              `yaml:"logLevel,omitempty"`
	OBS       OBSFileConfig       `yaml:"obs,omitempty"`
	HUD       HUDFileConfig       `yaml:"hud,omitempty"`
	Poll      PollFileConfig      `yaml:"poll,omitempty"`
	API       APIFileConfig       `yaml:"api,omitempty"`
	Metrics   MetricsFileConfig   `yaml:"metrics,omitempty"`
	Redis     RedisFileConfig     `yaml:"redis,omitempty"`
	Telemetry TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

// OBSFileConfig is the obs section of the file. Host is an alias of Address.
type OBSFileConfig struct {
	Address        string         `yaml:"address,omitempty"`
	Host           string         `yaml:"host,omitempty"`
	Port           *int           `yaml:"port,omitempty"`
	Password       *string        `yaml:"password,omitempty"`
	AudioInput     *string        `yaml:"audioInput,omitempty"`
	ReconnectDelay *time.Duration `yaml:"reconnectDelay,omitempty"`
	RequestTimeout *time.Duration `yaml:"requestTimeout,omitempty"`
	Correlation    string         `yaml:"correlation,omitempty"`
}

// HUDFileConfig is the hud section of the file.
type HUDFileConfig struct {
	Background *string `yaml:"background,omitempty"`
}

// PollFileConfig is the poll section of the file.
type PollFileConfig struct {
	StreamStatus *time.Duration `yaml:"streamStatus,omitempty"`
	ProfileList  *time.Duration `yaml:"profileList,omitempty"`
	Stats        *time.Duration `yaml:"stats,omitempty"`
	RecordStatus *time.Duration `yaml:"recordStatus,omitempty"`
	InputMute    *time.Duration `yaml:"inputMute,omitempty"`
}

// APIFileConfig is the api section of the file.
type APIFileConfig struct {
	ListenAddr     string   `yaml:"listenAddr,omitempty"`
	RateLimit      *int     `yaml:"rateLimit,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// MetricsFileConfig is the metrics section of the file.
type MetricsFileConfig struct {
	Enabled    *bool  `yaml:"enabled,omitempty"`
	ListenAddr string `yaml:"listenAddr,omitempty"`
}

// RedisFileConfig is the redis section of the file.
type RedisFileConfig struct {
	Addr     string         `yaml:"addr,omitempty"`
	Password *string        `yaml:"password,omitempty"`
	DB       *int           `yaml:"db,omitempty"`
	Channel  string         `yaml:"channel,omitempty"`
	Key      string         `yaml:"key,omitempty"`
	TTL      *time.Duration `yaml:"ttl,omitempty"`
}

// TelemetryFileConfig is the telemetry section of the file.
type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	Environment  string   `yaml:"environment,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}
