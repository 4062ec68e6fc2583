// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type waiterRecorder struct {
	mu    sync.Mutex
	calls []time.Duration
	allow int
}

func (w *waiterRecorder) wait(ctx context.Context, d time.Duration) bool {
	w.mu.Lock()
	w.calls = append(w.calls, d)
	allowed := len(w.calls) <= w.allow
	w.mu.Unlock()
	if !allowed {
		return false
	}
	return ctx.Err() == nil
}

func (w *waiterRecorder) Calls() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]time.Duration(nil), w.calls...)
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("id-%d", n.Add(1)) }
}

type harness struct {
	t       *testing.T
	m       *Manager
	h       *recordingHandler
	waiter  *waiterRecorder
	cancel  context.CancelFunc
	done    chan error
	dialer  *fakeDialer
	stopped bool
}

func startManager(t *testing.T, cfg Config, dialer *fakeDialer, allowReconnects int) *harness {
	t.Helper()
	if cfg.URL == "" {
		cfg.URL = "ws://obs.test:4455"
	}
	w := &waiterRecorder{allow: allowReconnects}
	m, err := NewManager(cfg,
		WithDialer(dialer),
		WithLogger(zerolog.Nop()),
		WithWaiter(w.wait),
		WithIDGenerator(sequentialIDs()),
	)
	require.NoError(t, err)

	h := newRecordingHandler()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, h) }()
	return &harness{t: t, m: m, h: h, waiter: w, cancel: cancel, done: done, dialer: dialer}
}

func (hs *harness) stop() {
	hs.t.Helper()
	if hs.stopped {
		return
	}
	hs.stopped = true
	hs.cancel()
	select {
	case err := <-hs.done:
		assert.NoError(hs.t, err)
	case <-time.After(2 * time.Second):
		hs.t.Fatal("manager did not stop")
	}
}

// identify drives conn through Hello/Identify/Identified and returns the Identify payload.
func (hs *harness) identify(conn *fakeConn, auth *AuthChallenge) Identify {
	hs.t.Helper()
	conn.serverSend(hs.t, OpHello, Hello{OBSWebSocketVersion: "5.4.2", RPCVersion: 1, Authentication: auth})
	f := conn.serverRecv(hs.t)
	require.Equal(hs.t, OpIdentify, f.Op)
	var id Identify
	require.NoError(hs.t, json.Unmarshal(f.D, &id))
	conn.serverSend(hs.t, OpIdentified, Identified{NegotiatedRPCVersion: 1})
	assert.True(hs.t, waitFor(hs.t, hs.h.states))
	return id
}

func TestManager_HandshakeWithAuthentication(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn := newFakeConn()
	hs := startManager(t, Config{Password: "hunter2"}, newFakeDialer(conn), 0)
	defer hs.stop()

	challenge := &AuthChallenge{Salt: "salt==", Challenge: "challenge=="}
	id := hs.identify(conn, challenge)

	assert.Equal(t, RPCVersion, id.RPCVersion)
	assert.Equal(t, ComputeToken("hunter2", *challenge), id.Authentication)
	assert.Equal(t, SubscriptionMask(65664), id.EventSubscriptions)
	assert.Equal(t, StateIdentified, hs.m.State())
}

func TestManager_HandshakeWithoutAuthentication(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn := newFakeConn()
	hs := startManager(t, Config{Password: "ignored"}, newFakeDialer(conn), 0)
	defer hs.stop()

	id := hs.identify(conn, nil)
	assert.Empty(t, id.Authentication)
}

func TestManager_SendDroppedUntilIdentified(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn := newFakeConn()
	hs := startManager(t, Config{}, newFakeDialer(conn), 0)
	defer hs.stop()

	assert.False(t, hs.m.Send(Request{Kind: KindGetStats}))
	assert.ErrorIs(t, hs.m.Offer(Request{Kind: KindGetStats}), ErrNotIdentified)

	conn.serverSend(t, OpHello, Hello{RPCVersion: 1})
	f := conn.serverRecv(t)
	require.Equal(t, OpIdentify, f.Op)

	// Authenticating: still dropped, nothing written.
	assert.False(t, hs.m.Send(Request{Kind: KindGetStats}))
	conn.assertNoFrame(t, 50*time.Millisecond)
}

func TestManager_RequestResponseRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn := newFakeConn()
	hs := startManager(t, Config{}, newFakeDialer(conn), 0)
	defer hs.stop()
	hs.identify(conn, nil)

	require.True(t, hs.m.Send(NewInputMuteRequest("Mic/Aux")))
	f := conn.serverRecv(t)
	require.Equal(t, OpRequest, f.Op)

	var req struct {
		RequestType string            `json:"requestType"`
		RequestID   string            `json:"requestId"`
		RequestData map[string]string `json:"requestData"`
	}
	require.NoError(t, json.Unmarshal(f.D, &req))
	assert.Equal(t, "GetInputMute", req.RequestType)
	assert.NotEmpty(t, req.RequestID)
	assert.Equal(t, "Mic/Aux", req.RequestData["inputName"])

	conn.serverSend(t, OpRequestResponse, map[string]any{
		"requestType":   "GetInputMute",
		"requestId":     req.RequestID,
		"requestStatus": map[string]any{"result": true, "code": 100},
		"responseData":  map[string]any{"inputMuted": true},
	})

	resp := waitFor(t, hs.h.responses)
	assert.Equal(t, KindGetInputMute, resp.Kind)
	require.NotNil(t, resp.Request)
	assert.Equal(t, req.RequestID, resp.Request.ID)
	mute, ok := resp.Payload.(*InputMute)
	require.True(t, ok)
	assert.True(t, mute.InputMuted)
	assert.Equal(t, 0, hs.m.Status().Outstanding)
}

func TestManager_EmptyRequestDataIsObject(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn := newFakeConn()
	hs := startManager(t, Config{}, newFakeDialer(conn), 0)
	defer hs.stop()
	hs.identify(conn, nil)

	require.True(t, hs.m.Send(Request{Kind: KindGetStats}))
	f := conn.serverRecv(t)
	var req map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(f.D, &req))
	assert.JSONEq(t, `{}`, string(req["requestData"]))
}

func TestManager_UnmatchedResponseStillDelivered(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn := newFakeConn()
	hs := startManager(t, Config{}, newFakeDialer(conn), 0)
	defer hs.stop()
	hs.identify(conn, nil)

	conn.serverSend(t, OpRequestResponse, map[string]any{
		"requestType":   "GetProfileList",
		"requestId":     "someone-else",
		"requestStatus": map[string]any{"result": true, "code": 100},
		"responseData":  map[string]any{"currentProfileName": "Main", "profiles": []string{"Main"}},
	})

	resp := waitFor(t, hs.h.responses)
	assert.Nil(t, resp.Request)
	pl, ok := resp.Payload.(*ProfileList)
	require.True(t, ok)
	assert.Equal(t, "Main", pl.CurrentProfileName)
}

func TestManager_SkipsMalformedAndKeepsSession(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn := newFakeConn()
	hs := startManager(t, Config{}, newFakeDialer(conn), 0)
	defer hs.stop()
	hs.identify(conn, nil)

	conn.serverSendRaw(t, []byte(`not json`))
	conn.serverSendRaw(t, []byte(`{"d":{}}`))
	conn.serverSend(t, OpRequestResponse, map[string]any{
		"requestType":   "GetStats",
		"requestId":     "x",
		"requestStatus": map[string]any{"result": true, "code": 100},
		"responseData":  map[string]any{"activeFps": 60},
	})
	conn.serverSend(t, OpRequestResponse, map[string]any{
		"requestType":   "GetInputMute",
		"requestId":     "y",
		"requestStatus": map[string]any{"result": false, "code": 600, "comment": "No source was found"},
	})
	conn.serverSend(t, OpRequestResponse, map[string]any{
		"requestType":   "GetInputMute",
		"requestId":     "z",
		"requestStatus": map[string]any{"result": true, "code": 100},
		"responseData":  map[string]any{"inputMuted": false},
	})

	resp := waitFor(t, hs.h.responses)
	assert.Equal(t, "z", resp.ID)
	assertNone(t, hs.h.responses, 50*time.Millisecond)
	assert.Equal(t, StateIdentified, hs.m.State())
}

func TestManager_DeliversTypedEvents(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn := newFakeConn()
	hs := startManager(t, Config{}, newFakeDialer(conn), 0)
	defer hs.stop()
	hs.identify(conn, nil)

	conn.serverSend(t, OpEvent, map[string]any{
		"eventType":   "RecordStateChanged",
		"eventIntent": 64,
		"eventData":   map[string]any{"outputActive": true, "outputState": OutputStarted},
	})

	ev := waitFor(t, hs.h.events)
	assert.Equal(t, EventRecordStateChanged, ev.Type)
	rec, ok := ev.Payload.(*RecordStateChanged)
	require.True(t, ok)
	assert.Equal(t, OutputStarted, rec.OutputState)
}

func TestManager_EventsBeforeIdentifiedIgnored(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn := newFakeConn()
	hs := startManager(t, Config{}, newFakeDialer(conn), 0)
	defer hs.stop()

	conn.serverSend(t, OpEvent, map[string]any{
		"eventType": "RecordStateChanged",
		"eventData": map[string]any{"outputState": OutputStarted},
	})
	assertNone(t, hs.h.events, 50*time.Millisecond)
}

func TestManager_ReconnectScheduledOncePerClose(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	first := newFakeConn()
	second := newFakeConn()
	hs := startManager(t, Config{}, newFakeDialer(first, second), 1)
	defer hs.stop()

	hs.identify(first, nil)
	first.peerClose(&CloseError{Code: 1001, Text: "going away"})
	assert.False(t, waitFor(t, hs.h.states))

	// Second session comes up after exactly one scheduled wait.
	hs.identify(second, nil)
	assert.Equal(t, []time.Duration{DefaultReconnectDelay}, hs.waiter.Calls())

	// Closing again exhausts the waiter; Run returns.
	second.peerClose(errPeerReset)
	assert.False(t, waitFor(t, hs.h.states))
	select {
	case err := <-hs.done:
		assert.NoError(t, err)
		hs.stopped = true
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not return after waiter refused")
	}
	assert.Equal(t, []time.Duration{DefaultReconnectDelay, DefaultReconnectDelay}, hs.waiter.Calls())
	assert.Equal(t, StateDisconnected, hs.m.State())
}

func TestManager_ClassifiesAuthFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn := newFakeConn()
	hs := startManager(t, Config{Password: "wrong"}, newFakeDialer(conn), 0)
	defer hs.stop()

	conn.serverSend(t, OpHello, Hello{RPCVersion: 1, Authentication: &AuthChallenge{Salt: "s", Challenge: "c"}})
	require.Equal(t, OpIdentify, conn.serverRecv(t).Op)
	conn.peerClose(&CloseError{Code: closeAuthenticationFailed, Text: "Authentication failed."})

	assert.False(t, waitFor(t, hs.h.states))
	select {
	case <-hs.done:
		hs.stopped = true
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not return")
	}
	assert.Equal(t, ReasonAuthFailed, hs.m.Status().LastDisconnectReason)
}

func TestManager_ClassifiesUnsupportedRPCVersion(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn := newFakeConn()
	hs := startManager(t, Config{}, newFakeDialer(conn), 0)
	defer hs.stop()

	conn.serverSend(t, OpHello, Hello{RPCVersion: 2})
	require.Equal(t, OpIdentify, conn.serverRecv(t).Op)
	conn.peerClose(&CloseError{Code: closeUnsupportedRPC, Text: "Unsupported RPC version."})

	assert.False(t, waitFor(t, hs.h.states))
	select {
	case <-hs.done:
		hs.stopped = true
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not return")
	}
	assert.Equal(t, ReasonUnsupportedRPC, hs.m.Status().LastDisconnectReason)
}

func TestManager_DialFailureSchedulesReconnect(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dialer := newFakeDialer()
	dialer.err = fmt.Errorf("connection refused")
	hs := startManager(t, Config{ReconnectDelay: 2 * time.Second}, dialer, 2)

	for i := 0; i < 3; i++ {
		assert.False(t, waitFor(t, hs.h.states))
	}
	select {
	case <-hs.done:
		hs.stopped = true
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not return")
	}
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}, hs.waiter.Calls())
	assert.Equal(t, ReasonDialFailed, hs.m.Status().LastDisconnectReason)
}

func TestManager_RunRequiresHandler(t *testing.T) {
	m, err := NewManager(Config{URL: "ws://x"})
	require.NoError(t, err)
	assert.ErrorIs(t, m.Run(context.Background(), nil), ErrNilHandler)
}

func TestNewManager_Defaults(t *testing.T) {
	_, err := NewManager(Config{})
	assert.Error(t, err)

	m, err := NewManager(Config{URL: "ws://x"})
	require.NoError(t, err)
	assert.Equal(t, DefaultReconnectDelay, m.cfg.ReconnectDelay)
	assert.Equal(t, DefaultRequestTimeout, m.cfg.RequestTimeout)
	assert.Equal(t, SubscriptionMask(65664), m.cfg.Subscriptions)
	assert.Equal(t, StateDisconnected, m.State())

	_, err = NewManager(Config{URL: "ws://x", Correlation: "lifo"})
	assert.Error(t, err)
}
