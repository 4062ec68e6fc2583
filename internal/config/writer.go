// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Redacted replaces secrets in dumped configuration.
const Redacted = "***redacted***"

// RedactSecrets returns a copy of cfg with passwords replaced by Redacted.
func RedactSecrets(cfg AppConfig) AppConfig {
	if cfg.OBS.Password != "" {
		cfg.OBS.Password = Redacted
	}
	if cfg.Redis.Password != "" {
		cfg.Redis.Password = Redacted
	}
	return cfg
}

// Marshal encodes cfg as YAML. Secrets are redacted unless withSecrets is set.
func Marshal(cfg AppConfig, withSecrets bool) ([]byte, error) {
	if !withSecrets {
		cfg = RedactSecrets(cfg)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}

// WriteFile atomically writes cfg to path. Existing files are replaced only
// after the new content is fully on disk.
func WriteFile(path string, cfg AppConfig) error {
	data, err := Marshal(cfg, true)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
