// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	t.Setenv("OBSHUD_TEST_STR", "value")
	t.Setenv("OBSHUD_TEST_EMPTY", "")
	assert.Equal(t, "value", ParseString("OBSHUD_TEST_STR", "d"))
	assert.Equal(t, "d", ParseString("OBSHUD_TEST_EMPTY", "d"))
	assert.Equal(t, "d", ParseString("OBSHUD_TEST_UNSET", "d"))
}

func TestParseString_SensitiveValueNotLogged(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Setenv("OBSHUD_PASSWORD", "hunter2")

	got := parseStringWithLogger(logger, "OBSHUD_PASSWORD", "")
	assert.Equal(t, "hunter2", got)
	assert.NotContains(t, buf.String(), "hunter2")
	assert.Contains(t, buf.String(), `"sensitive":true`)
}

func TestParseStringWithAlias(t *testing.T) {
	t.Setenv("OBSHUD_TEST_ALIAS", "alias")
	assert.Equal(t, "alias", ParseStringWithAlias("OBSHUD_TEST_KEY", "OBSHUD_TEST_ALIAS", "d"))
	t.Setenv("OBSHUD_TEST_KEY", "key")
	assert.Equal(t, "key", ParseStringWithAlias("OBSHUD_TEST_KEY", "OBSHUD_TEST_ALIAS", "d"))
}

func TestParseNumbers(t *testing.T) {
	t.Setenv("OBSHUD_TEST_INT", " 42 ")
	t.Setenv("OBSHUD_TEST_BAD_INT", "x")
	t.Setenv("OBSHUD_TEST_DUR", "250ms")
	t.Setenv("OBSHUD_TEST_FLOAT", "0.5")
	t.Setenv("OBSHUD_TEST_BAD_FLOAT", "half")

	assert.Equal(t, 42, ParseInt("OBSHUD_TEST_INT", 1))
	assert.Equal(t, 1, ParseInt("OBSHUD_TEST_BAD_INT", 1))
	assert.Equal(t, 250*time.Millisecond, ParseDuration("OBSHUD_TEST_DUR", time.Second))
	assert.Equal(t, 0.5, ParseFloat("OBSHUD_TEST_FLOAT", 1))
	assert.Equal(t, 1.0, ParseFloat("OBSHUD_TEST_BAD_FLOAT", 1))
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"true", "1", "YES"} {
		t.Setenv("OBSHUD_TEST_BOOL", v)
		assert.True(t, ParseBool("OBSHUD_TEST_BOOL", false), v)
	}
	for _, v := range []string{"false", "0", "no"} {
		t.Setenv("OBSHUD_TEST_BOOL", v)
		assert.False(t, ParseBool("OBSHUD_TEST_BOOL", true), v)
	}
	t.Setenv("OBSHUD_TEST_BOOL", "maybe")
	assert.True(t, ParseBool("OBSHUD_TEST_BOOL", true))
}
