// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeConn is an in-memory Conn. The test plays the server through
// serverSend/serverRecv/peerClose.
type fakeConn struct {
	in     chan []byte
	out    chan []byte
	closed chan struct{}

	mu        sync.Mutex
	readErr   error
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		out:    make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadFrame(ctx context.Context) ([]byte, error) {
	select {
	case b := <-c.in:
		return b, nil
	case <-c.closed:
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.readErr != nil {
			return nil, c.readErr
		}
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) WriteFrame(_ context.Context, payload []byte) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	select {
	case c.out <- payload:
		return nil
	case <-c.closed:
		return ErrClosed
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) peerClose(err error) {
	c.mu.Lock()
	c.readErr = err
	c.mu.Unlock()
	_ = c.Close()
}

func (c *fakeConn) serverSend(t *testing.T, op OpCode, d any) {
	t.Helper()
	frame, err := encodeFrame(op, d)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	c.serverSendRaw(t, frame)
}

func (c *fakeConn) serverSendRaw(t *testing.T, frame []byte) {
	t.Helper()
	select {
	case c.in <- frame:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out delivering frame to client")
	}
}

type sentFrame struct {
	Op OpCode
	D  json.RawMessage
}

func (c *fakeConn) serverRecv(t *testing.T) sentFrame {
	t.Helper()
	select {
	case b := <-c.out:
		var f sentFrame
		var env envelope
		if err := json.Unmarshal(b, &env); err != nil {
			t.Fatalf("client sent invalid frame %q: %v", b, err)
		}
		f.Op, f.D = env.Op, env.D
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for client frame")
		return sentFrame{}
	}
}

func (c *fakeConn) assertNoFrame(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case b := <-c.out:
		t.Fatalf("unexpected client frame: %s", b)
	case <-time.After(within):
	}
}

// fakeDialer hands out queued conns in order.
type fakeDialer struct {
	conns chan *fakeConn
	err   error
	dials chan struct{}
}

func newFakeDialer(conns ...*fakeConn) *fakeDialer {
	d := &fakeDialer{conns: make(chan *fakeConn, 8), dials: make(chan struct{}, 8)}
	for _, c := range conns {
		d.conns <- c
	}
	return d
}

func (d *fakeDialer) Dial(ctx context.Context, _ string) (Conn, error) {
	select {
	case d.dials <- struct{}{}:
	default:
	}
	if d.err != nil {
		return nil, d.err
	}
	select {
	case c := <-d.conns:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recordingHandler captures handler calls on channels.
type recordingHandler struct {
	states    chan bool
	events    chan Event
	responses chan Response
	respErr   error
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		states:    make(chan bool, 16),
		events:    make(chan Event, 16),
		responses: make(chan Response, 16),
	}
}

func (h *recordingHandler) HandleState(_ context.Context, connected bool) { h.states <- connected }

func (h *recordingHandler) HandleEvent(_ context.Context, ev Event) error {
	h.events <- ev
	return nil
}

func (h *recordingHandler) HandleResponse(_ context.Context, resp Response) error {
	h.responses <- resp
	return h.respErr
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for handler call")
		var zero T
		return zero
	}
}

func assertNone[T any](t *testing.T, ch <-chan T, within time.Duration) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected handler call: %+v", v)
	case <-time.After(within):
	}
}

var errPeerReset = errors.New("connection reset by peer")
