// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

import (
	"fmt"
	"sync"
	"time"
)

// Correlation strategies.
const (
	CorrelateByKind = "kind"
	CorrelateByID   = "id"
)

// OutstandingRequest is a request written to the socket and not yet answered.
type OutstandingRequest struct {
	ID       string
	Kind     RequestKind
	IssuedAt time.Time
}

// Correlator pairs responses with the requests that caused them. Resolution
// is advisory: handlers route on the response's own kind, so an unmatched
// response is still delivered.
type Correlator interface {
	Register(req OutstandingRequest)
	// Resolve removes and returns the outstanding request answered by a
	// response of the given kind and id.
	Resolve(kind RequestKind, id string) (OutstandingRequest, bool)
	// Expire removes requests older than the correlator's timeout.
	Expire(now time.Time) []OutstandingRequest
	// Reset forgets every outstanding request. Called when a session ends.
	Reset()
	Len() int
}

// NewCorrelator returns the correlator for strategy. A non-positive timeout
// disables expiry.
func NewCorrelator(strategy string, timeout time.Duration) (Correlator, error) {
	switch strategy {
	case "", CorrelateByKind:
		return NewKindCorrelator(timeout), nil
	case CorrelateByID:
		return NewIDCorrelator(timeout), nil
	default:
		return nil, fmt.Errorf("unknown correlation strategy %q", strategy)
	}
}

// KindCorrelator matches a response to the oldest outstanding request of
// the same kind. Kinds never overlap in meaning, so ids are ignored.
type KindCorrelator struct {
	mu      sync.Mutex
	timeout time.Duration
	pending map[RequestKind][]OutstandingRequest
}

// NewKindCorrelator creates a KindCorrelator.
func NewKindCorrelator(timeout time.Duration) *KindCorrelator {
	return &KindCorrelator{
		timeout: timeout,
		pending: make(map[RequestKind][]OutstandingRequest),
	}
}

func (c *KindCorrelator) Register(req OutstandingRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[req.Kind] = append(c.pending[req.Kind], req)
}

func (c *KindCorrelator) Resolve(kind RequestKind, _ string) (OutstandingRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	queue := c.pending[kind]
	if len(queue) == 0 {
		return OutstandingRequest{}, false
	}
	req := queue[0]
	if len(queue) == 1 {
		delete(c.pending, kind)
	} else {
		c.pending[kind] = queue[1:]
	}
	return req, true
}

func (c *KindCorrelator) Expire(now time.Time) []OutstandingRequest {
	if c.timeout <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var expired []OutstandingRequest
	for kind, queue := range c.pending {
		// queues are ordered by issue time
		i := 0
		for i < len(queue) && now.Sub(queue[i].IssuedAt) >= c.timeout {
			i++
		}
		if i == 0 {
			continue
		}
		expired = append(expired, queue[:i]...)
		if i == len(queue) {
			delete(c.pending, kind)
		} else {
			c.pending[kind] = queue[i:]
		}
	}
	return expired
}

func (c *KindCorrelator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = make(map[RequestKind][]OutstandingRequest)
}

func (c *KindCorrelator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, q := range c.pending {
		n += len(q)
	}
	return n
}

// IDCorrelator matches responses by their echoed requestId.
type IDCorrelator struct {
	mu      sync.Mutex
	timeout time.Duration
	pending map[string]OutstandingRequest
}

// NewIDCorrelator creates an IDCorrelator.
func NewIDCorrelator(timeout time.Duration) *IDCorrelator {
	return &IDCorrelator{
		timeout: timeout,
		pending: make(map[string]OutstandingRequest),
	}
}

func (c *IDCorrelator) Register(req OutstandingRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[req.ID] = req
}

func (c *IDCorrelator) Resolve(_ RequestKind, id string) (OutstandingRequest, bool) {
	if id == "" {
		return OutstandingRequest{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	return req, ok
}

func (c *IDCorrelator) Expire(now time.Time) []OutstandingRequest {
	if c.timeout <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var expired []OutstandingRequest
	for id, req := range c.pending {
		if now.Sub(req.IssuedAt) >= c.timeout {
			expired = append(expired, req)
			delete(c.pending, id)
		}
	}
	return expired
}

func (c *IDCorrelator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = make(map[string]OutstandingRequest)
}

func (c *IDCorrelator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
