// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

// RequestKind enumerates the requests the HUD issues.
type RequestKind int

const (
	KindUnknown RequestKind = iota
	KindGetStreamStatus
	KindGetStreamServiceSettings
	KindGetProfileList
	KindGetStats
	KindGetVideoSettings
	KindGetRecordStatus
	KindGetInputMute
)

var requestTypes = map[RequestKind]string{
	KindGetStreamStatus:          "GetStreamStatus",
	KindGetStreamServiceSettings: "GetStreamServiceSettings",
	KindGetProfileList:           "GetProfileList",
	KindGetStats:                 "GetStats",
	KindGetVideoSettings:         "GetVideoSettings",
	KindGetRecordStatus:          "GetRecordStatus",
	KindGetInputMute:             "GetInputMute",
}

var kindsByType = func() map[string]RequestKind {
	m := make(map[string]RequestKind, len(requestTypes))
	for k, v := range requestTypes {
		m[v] = k
	}
	return m
}()

// Kinds returns every known request kind in declaration order.
func Kinds() []RequestKind {
	return []RequestKind{
		KindGetStreamStatus,
		KindGetStreamServiceSettings,
		KindGetProfileList,
		KindGetStats,
		KindGetVideoSettings,
		KindGetRecordStatus,
		KindGetInputMute,
	}
}

// String returns the wire requestType, or "unknown".
func (k RequestKind) String() string {
	if s, ok := requestTypes[k]; ok {
		return s
	}
	return "unknown"
}

// ParseRequestKind maps a wire requestType back to its kind.
func ParseRequestKind(requestType string) (RequestKind, bool) {
	k, ok := kindsByType[requestType]
	return k, ok
}

// Request is an outbound request before it is assigned an id.
// A nil Data is sent as an empty object.
type Request struct {
	Kind RequestKind
	Data any
}

// InputMuteData is the requestData of GetInputMute.
type InputMuteData struct {
	InputName string `json:"inputName"`
}

// NewInputMuteRequest builds the GetInputMute request for inputName.
func NewInputMuteRequest(inputName string) Request {
	return Request{Kind: KindGetInputMute, Data: InputMuteData{InputName: inputName}}
}
