// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

import (
	"errors"
	"fmt"
)

var (
	// ErrNotIdentified is reported when a request is offered outside the Identified state.
	ErrNotIdentified = errors.New("obsws: session not identified")
	// ErrOutboxFull is reported when the session loop is not keeping up.
	ErrOutboxFull = errors.New("obsws: outbox full")
	// ErrClosed is returned by transports after the connection has been closed.
	ErrClosed = errors.New("obsws: connection closed")
	// ErrMalformed marks inbound payloads that failed decoding or validation.
	ErrMalformed = errors.New("obsws: malformed message")
	// ErrNilHandler is returned by Run when no handler is supplied.
	ErrNilHandler = errors.New("obsws: handler is required")
)

// MalformedMessageError describes an inbound message that was skipped.
// It unwraps to ErrMalformed so callers can use errors.Is at the boundary.
type MalformedMessageError struct {
	Op     string // wire op or payload kind being decoded
	Reason string // short, metric-safe reason label
	Err    error  // underlying decode or validation error
}

func (e *MalformedMessageError) Error() string {
	msg := fmt.Sprintf("obsws: malformed %s: %s", e.Op, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *MalformedMessageError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformed}
	}
	return []error{ErrMalformed, e.Err}
}

// Malformed builds a MalformedMessageError. Handlers use it to reject
// payloads that pass schema validation but violate a semantic rule.
func Malformed(op, reason string, err error) error {
	return &MalformedMessageError{Op: op, Reason: reason, Err: err}
}

// MalformedReason extracts the reason label from err, or "unknown".
func MalformedReason(err error) string {
	var me *MalformedMessageError
	if errors.As(err, &me) && me.Reason != "" {
		return me.Reason
	}
	return "unknown"
}

// CloseError reports a websocket close frame received from the peer.
type CloseError struct {
	Code int
	Text string
}

func (e *CloseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("obsws: closed by peer (code %d)", e.Code)
	}
	return fmt.Sprintf("obsws: closed by peer (code %d): %s", e.Code, e.Text)
}
