// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nicosch44/obs-info-hud/internal/log"
)

// EnvPrefix prefixes every environment key read by the loader.
const EnvPrefix = "OBSHUD_"

// lookupEnv returns the trimmed value of key and whether it is set to
// something non-empty. Empty variables count as unset.
func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// parseEnv reads key with parse. An unparsable value is reported and the
// default wins, so a typo in one variable never aborts startup.
func parseEnv[T any](logger zerolog.Logger, key string, def T, kind string, parse func(string) (T, error)) T {
	raw, ok := lookupEnv(key)
	if !ok {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", raw).
			Str("default", fmt.Sprint(def)).
			Msgf("invalid %s in environment variable, using default", kind)
		return def
	}
	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if isSensitiveKey(key) {
		ev.Bool("sensitive", true)
	} else {
		ev.Str("value", fmt.Sprint(v))
	}
	ev.Msg("using environment variable")
	return v
}

// ParseString reads a string from the environment or returns defaultValue.
// The source is logged; sensitive keys never log their value.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	return parseEnv(logger, key, defaultValue, "string", func(s string) (string, error) { return s, nil })
}

// ParseStringWithAlias reads key, falling back to alias. An alias hit is
// logged so operators can move to the canonical key.
func ParseStringWithAlias(key, alias, defaultValue string) string {
	if _, ok := lookupEnv(key); ok {
		return ParseString(key, defaultValue)
	}
	if _, ok := lookupEnv(alias); ok {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", alias).
			Str("replacement", key).
			Msg("environment variable is an alias, prefer the canonical key")
		return ParseString(alias, defaultValue)
	}
	return defaultValue
}

// ParseInt reads a base-10 integer.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(log.WithComponent("config"), key, defaultValue, "integer", strconv.Atoi)
}

// ParseDuration reads a Go duration such as "500ms" or "5s".
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(log.WithComponent("config"), key, defaultValue, "duration", time.ParseDuration)
}

// ParseFloat reads a float64.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(log.WithComponent("config"), key, defaultValue, "float", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseBool accepts true/false, 1/0 and yes/no, case-insensitive.
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(log.WithComponent("config"), key, defaultValue, "boolean", parseBoolWord)
}

func parseBoolWord(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "token") || strings.Contains(lower, "password")
}
