// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Resource attribute keys.
const (
	ServiceNameKey    = "service.name"
	ServiceVersionKey = "service.version"
	EnvironmentKey    = "deployment.environment"
)

// ResourceAttributes returns the resource attributes for cfg. Empty values are omitted.
func ResourceAttributes(cfg Config) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	name := cfg.ServiceName
	if name == "" {
		name = "obs-hud"
	}
	attrs = append(attrs, attribute.String(ServiceNameKey, name))
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, attribute.String(ServiceVersionKey, cfg.ServiceVersion))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, attribute.String(EnvironmentKey, cfg.Environment))
	}
	return attrs
}
