// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package obsws implements a client session for the obs-websocket v5 protocol:
// the Hello/Identify handshake, the request channel and event delivery.
package obsws

import (
	"encoding/json"
	"strconv"
)

// RPCVersion is the protocol version announced in Identify.
const RPCVersion = 1

// OpCode tags the purpose of a wire message.
type OpCode int

const (
	OpHello           OpCode = 0
	OpIdentify        OpCode = 1
	OpIdentified      OpCode = 2
	OpReidentify      OpCode = 3
	OpEvent           OpCode = 5
	OpRequest         OpCode = 6
	OpRequestResponse OpCode = 7
)

func (o OpCode) String() string {
	switch o {
	case OpHello:
		return "hello"
	case OpIdentify:
		return "identify"
	case OpIdentified:
		return "identified"
	case OpReidentify:
		return "reidentify"
	case OpEvent:
		return "event"
	case OpRequest:
		return "request"
	case OpRequestResponse:
		return "request_response"
	default:
		return "op_" + strconv.Itoa(int(o))
	}
}

// envelope is the outer frame of every message: {"op": n, "d": {...}}.
type envelope struct {
	Op OpCode          `json:"op"`
	D  json.RawMessage `json:"d"`
}

// inboundEnvelope keeps op optional so a frame without one is rejected
// instead of being read as Hello.
type inboundEnvelope struct {
	Op *OpCode         `json:"op"`
	D  json.RawMessage `json:"d"`
}

// AuthChallenge is the optional authentication block of Hello.
type AuthChallenge struct {
	Salt      string `json:"salt"`
	Challenge string `json:"challenge"`
}

// Hello is the first message sent by the server after the socket opens.
type Hello struct {
	OBSWebSocketVersion string         `json:"obsWebSocketVersion,omitempty"`
	RPCVersion          int            `json:"rpcVersion,omitempty"`
	Authentication      *AuthChallenge `json:"authentication,omitempty"`
}

// Identify answers Hello with the auth token and event subscription mask.
type Identify struct {
	RPCVersion         int              `json:"rpcVersion"`
	Authentication     string           `json:"authentication,omitempty"`
	EventSubscriptions SubscriptionMask `json:"eventSubscriptions"`
}

// Identified confirms the session is ready for requests.
type Identified struct {
	NegotiatedRPCVersion int `json:"negotiatedRpcVersion"`
}

type eventFrame struct {
	EventType   string          `json:"eventType"`
	EventIntent int             `json:"eventIntent,omitempty"`
	EventData   json.RawMessage `json:"eventData,omitempty"`
}

type requestFrame struct {
	RequestType string `json:"requestType"`
	RequestID   string `json:"requestId"`
	RequestData any    `json:"requestData"`
}

// RequestStatus is the outcome block of a request response.
type RequestStatus struct {
	Result  bool   `json:"result"`
	Code    int    `json:"code"`
	Comment string `json:"comment,omitempty"`
}

type responseFrame struct {
	RequestType   string          `json:"requestType"`
	RequestID     string          `json:"requestId"`
	RequestStatus *RequestStatus  `json:"requestStatus,omitempty"`
	ResponseData  json.RawMessage `json:"responseData,omitempty"`
}

func encodeFrame(op OpCode, d any) ([]byte, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Op: op, D: raw})
}
