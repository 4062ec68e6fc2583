// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Nicosch44/obs-info-hud/internal/obsws"
)

// SessionStatus reports the OBS session state.
type SessionStatus interface {
	Status() obsws.Status
}

// SessionChecker is healthy while the OBS session is identified.
type SessionChecker struct {
	source SessionStatus
}

// NewSessionChecker creates a checker for the OBS session.
func NewSessionChecker(source SessionStatus) *SessionChecker {
	return &SessionChecker{source: source}
}

func (c *SessionChecker) Name() string {
	return "obs_session"
}

func (c *SessionChecker) Check(_ context.Context) CheckResult {
	st := c.source.Status()
	details := map[string]any{
		"state":       st.State.String(),
		"outstanding": st.Outstanding,
	}
	if st.LastDisconnectReason != "" {
		details["last_disconnect_reason"] = st.LastDisconnectReason
	}
	if st.State == obsws.StateIdentified {
		return CheckResult{Status: StatusHealthy, Message: "identified", Details: details}
	}
	return CheckResult{
		Status:  StatusUnhealthy,
		Message: "session not identified",
		Details: details,
	}
}

// RedisChecker pings the Redis publisher. A failing Redis only degrades the
// daemon; the HUD keeps working without it.
type RedisChecker struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisChecker creates a checker for the Redis publisher connection.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client, timeout: 2 * time.Second}
}

func (c *RedisChecker) Name() string {
	return "redis"
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		return CheckResult{Status: StatusDegraded, Error: err.Error(), Message: "redis unreachable"}
	}
	return CheckResult{Status: StatusHealthy, Message: "redis reachable"}
}
