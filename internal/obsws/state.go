// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

// ConnectionState is the session lifecycle state.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateAwaitingHello
	StateAuthenticating
	StateIdentified
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAwaitingHello:
		return "awaiting_hello"
	case StateAuthenticating:
		return "authenticating"
	case StateIdentified:
		return "identified"
	default:
		return "unknown"
	}
}

// Disconnect reasons reported in logs and metrics. They never change
// recovery: every close schedules the same reconnect.
const (
	ReasonDialFailed          = "dial_failed"
	ReasonAuthFailed          = "auth_failed"
	ReasonUnsupportedRPC      = "unsupported_rpc_version"
	ReasonAuthRejectedSuspect = "auth_rejected_suspected"
	ReasonHandshakeIncomplete = "handshake_incomplete"
	ReasonPeerClosed          = "peer_closed"
	ReasonReadError           = "read_error"
	ReasonWriteError          = "write_error"
	ReasonShutdown            = "shutdown"
)

// obs-websocket close codes of interest.
const (
	closeAuthenticationFailed = 4009
	closeUnsupportedRPC       = 4010
)
