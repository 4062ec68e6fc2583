// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_AttachesServiceAndComponent(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prev)
		Configure(Config{})
	})

	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "obs-hud-test", Version: "v1.2.3"})

	l := WithComponent("obsws")
	l.Debug().Str(FieldEvent, "test.event").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "obs-hud-test", entry[FieldService])
	assert.Equal(t, "v1.2.3", entry[FieldVersion])
	assert.Equal(t, "obsws", entry[FieldComponent])
	assert.Equal(t, "test.event", entry[FieldEvent])
}

func TestSetLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	require.NoError(t, SetLevel("warn"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	require.Error(t, SetLevel("loud"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}
