// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWSServer(t *testing.T, serve func(*websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		serve(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSDialer_FramesAndCloseCode(t *testing.T) {
	received := make(chan string, 1)
	url := newWSServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"op":0,"d":{"rpcVersion":1}}`))
		_, msg, err := conn.ReadMessage()
		if err == nil {
			received <- string(msg)
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(closeAuthenticationFailed, "Authentication failed."))
		_, _, _ = conn.ReadMessage()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := WSDialer{}.Dial(ctx, url)
	require.NoError(t, err)
	defer conn.Close()

	frame, err := conn.ReadFrame(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":0,"d":{"rpcVersion":1}}`, string(frame))

	require.NoError(t, conn.WriteFrame(ctx, []byte(`{"op":1,"d":{"rpcVersion":1,"eventSubscriptions":65664}}`)))
	select {
	case msg := <-received:
		assert.Contains(t, msg, `"eventSubscriptions":65664`)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not receive identify")
	}

	_, err = conn.ReadFrame(ctx)
	var ce *CloseError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, closeAuthenticationFailed, ce.Code)
}

func TestWSDialer_DialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	_, err := WSDialer{HandshakeTimeout: time.Second}.Dial(ctx, url)
	assert.Error(t, err)
}

func TestWSDialer_CloseIsIdempotent(t *testing.T) {
	url := newWSServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	conn, err := WSDialer{}.Dial(context.Background(), url)
	require.NoError(t, err)
	assert.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())
}
