// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nicosch44/obs-info-hud/internal/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "obs-hud "+version.Version), out)
}

func TestConfigInitValidateDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs-hud.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	_, err = execute(t, "config", "init", path)
	require.Error(t, err, "init must refuse to overwrite without --force")

	_, err = execute(t, "config", "init", "--force", path)
	require.NoError(t, err)

	out, err = execute(t, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	t.Setenv("OBSHUD_PASSWORD", "hunter2")
	out, err = execute(t, "--config", path, "config", "dump")
	require.NoError(t, err)
	assert.Contains(t, out, "port: 4455")
	assert.NotContains(t, out, "hunter2")

	out, err = execute(t, "--config", path, "config", "dump", "--show-secrets")
	require.NoError(t, err)
	assert.Contains(t, out, "hunter2")

	out, err = execute(t, "--config", path, "config", "dump", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "\"Port\": 4455")
	assert.NotContains(t, out, "hunter2")
}

func TestConfigValidate_RejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("obs:\n  portt: 4455\n"), 0o600))

	_, err := execute(t, "--config", path, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestConfigDump_UnknownFormat(t *testing.T) {
	_, err := execute(t, "config", "dump", "--format", "toml")
	assert.Error(t, err)
}

func TestHealthcheckCmd(t *testing.T) {
	ready := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/healthz":
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/readyz" && ready:
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	out, err := execute(t, "healthcheck", "--addr", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "healthcheck successful (ready)")

	ready = false
	_, err = execute(t, "healthcheck", "--addr", srv.URL)
	require.Error(t, err)

	_, err = execute(t, "healthcheck", "--addr", srv.URL, "--mode", "live")
	require.NoError(t, err)

	_, err = execute(t, "healthcheck", "--mode", "sideways")
	require.Error(t, err)
}

func TestProbeURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{addr: ":8089", want: "http://127.0.0.1:8089/readyz"},
		{addr: "0.0.0.0:8089", want: "http://127.0.0.1:8089/readyz"},
		{addr: "[::]:8089", want: "http://127.0.0.1:8089/readyz"},
		{addr: "10.0.0.5:9000", want: "http://10.0.0.5:9000/readyz"},
		{addr: "http://hud.local:8089/", want: "http://hud.local:8089/readyz"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, probeURL(tt.addr, "/readyz"), tt.addr)
	}
}
