// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nicosch44/obs-info-hud/internal/config"
	"github.com/Nicosch44/obs-info-hud/internal/obsws"
)

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string { return m.name }

func (m *mockChecker) Check(context.Context) CheckResult {
	return CheckResult{Status: m.status}
}

type staticSession obsws.Status

func (s staticSession) Status() obsws.Status { return obsws.Status(s) }

func TestManager_Health_NoCheckers(t *testing.T) {
	m := NewManager("v1.0.0")

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.GreaterOrEqual(t, resp.Uptime, int64(0))
	assert.Nil(t, resp.Checks)
}

func TestManager_Health_WithCheckers(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "healthy", status: StatusHealthy})
	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Nil(t, resp.Checks)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestManager_Health_Uptime(t *testing.T) {
	m := NewManager("v1.0.0")
	base := m.started
	m.now = func() time.Time { return base.Add(90 * time.Second) }

	assert.Equal(t, int64(90), m.Health(context.Background(), false).Uptime)
}

func TestManager_Ready(t *testing.T) {
	m := NewManager("v1.0.0")
	assert.True(t, m.Ready(context.Background()).Ready)

	m.RegisterChecker(&mockChecker{name: "redis", status: StatusDegraded})
	resp := m.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusDegraded, resp.Status)

	m.RegisterChecker(&mockChecker{name: "obs_session", status: StatusUnhealthy})
	resp = m.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestServeReady_FollowsSessionState(t *testing.T) {
	session := staticSession{State: obsws.StateAuthenticating, LastDisconnectReason: obsws.ReasonAuthFailed}
	m := NewManager("v1.0.0")
	m.RegisterChecker(NewSessionChecker(session))

	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Ready)
	check := body.Checks["obs_session"]
	assert.Equal(t, "authenticating", check.Details["state"])
	assert.Equal(t, obsws.ReasonAuthFailed, check.Details["last_disconnect_reason"])

	m = NewManager("v1.0.0")
	m.RegisterChecker(NewSessionChecker(staticSession{State: obsws.StateIdentified}))
	rec = httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServeHealth_AlwaysOK(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(NewSessionChecker(staticSession{State: obsws.StateDisconnected}))

	rec := httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, StatusUnhealthy, body.Status)
	assert.Contains(t, body.Checks, "obs_session")
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewRedisChecker(client)
	assert.Equal(t, StatusHealthy, c.Check(context.Background()).Status)

	mr.Close()
	res := c.Check(context.Background())
	assert.Equal(t, StatusDegraded, res.Status)
	assert.NotEmpty(t, res.Error)
}

func TestPerformStartupChecks(t *testing.T) {
	cfg := config.Defaults()
	cfg.API.ListenAddr = "127.0.0.1:0"
	cfg.Metrics.ListenAddr = "127.0.0.1:0"
	require.NoError(t, PerformStartupChecks(context.Background(), cfg))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg.API.ListenAddr = ln.Addr().String()
	assert.ErrorContains(t, PerformStartupChecks(context.Background(), cfg), "api listener")
}
