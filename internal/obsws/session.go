// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	obslog "github.com/Nicosch44/obs-info-hud/internal/log"
	"github.com/Nicosch44/obs-info-hud/internal/metrics"
)

// session serves one connection. Only its loop goroutine writes to conn or
// calls the handler.
type session struct {
	m      *Manager
	conn   Conn
	h      Handler
	logger zerolog.Logger
	span   trace.Span

	authSent   bool
	identified bool
}

type inbound struct {
	data []byte
	err  error
}

func (s *session) run(ctx context.Context) string {
	m := s.m
	m.correlator.Reset()
	defer m.correlator.Reset()
	m.setState(StateAwaitingHello)

	readCtx, cancelRead := context.WithCancel(ctx)
	inbox := make(chan inbound)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.readLoop(readCtx, inbox)
	}()
	defer func() {
		cancelRead()
		_ = s.conn.Close()
		wg.Wait()
	}()

	var gc <-chan time.Time
	if m.cfg.RequestTimeout > 0 {
		t := time.NewTicker(max(m.cfg.RequestTimeout/2, time.Millisecond))
		defer t.Stop()
		gc = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return ReasonShutdown
		case in := <-inbox:
			if in.err != nil {
				return s.classify(ctx, in.err)
			}
			if err := s.handleFrame(ctx, in.data); err != nil {
				s.logger.Warn().Err(err).Str(obslog.FieldEvent, "obsws.write_failed").Msg("write failed")
				return ReasonWriteError
			}
		case req := <-m.outbox:
			if err := s.writeRequest(ctx, req); err != nil {
				s.logger.Warn().Err(err).Str(obslog.FieldEvent, "obsws.write_failed").Msg("write failed")
				return ReasonWriteError
			}
		case <-gc:
			s.expire()
		}
	}
}

func (s *session) readLoop(ctx context.Context, inbox chan<- inbound) {
	for {
		data, err := s.conn.ReadFrame(ctx)
		select {
		case inbox <- inbound{data: data, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *session) classify(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return ReasonShutdown
	}
	var ce *CloseError
	isClose := errors.As(err, &ce)
	if isClose {
		switch ce.Code {
		case closeAuthenticationFailed:
			return ReasonAuthFailed
		case closeUnsupportedRPC:
			return ReasonUnsupportedRPC
		}
	}
	if !s.identified {
		if s.authSent {
			return ReasonAuthRejectedSuspect
		}
		return ReasonHandshakeIncomplete
	}
	if isClose {
		return ReasonPeerClosed
	}
	return ReasonReadError
}

func (s *session) handleFrame(ctx context.Context, data []byte) error {
	var env inboundEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.m.malformed(s.logger, Malformed("envelope", "invalid_json", err))
		return nil
	}
	if env.Op == nil {
		s.m.malformed(s.logger, Malformed("envelope", "missing_op", nil))
		return nil
	}
	op := *env.Op
	metrics.RecordMessageReceived(op.String())

	switch op {
	case OpHello:
		return s.onHello(ctx, env.D)
	case OpIdentified:
		s.onIdentified(ctx, env.D)
	case OpEvent:
		s.onEvent(ctx, env.D)
	case OpRequestResponse:
		s.onResponse(ctx, env.D)
	default:
		s.logger.Debug().Str(obslog.FieldOp, op.String()).Msg("ignoring op")
	}
	return nil
}

func (s *session) onHello(ctx context.Context, d json.RawMessage) error {
	m := s.m
	if m.State() != StateAwaitingHello {
		s.logger.Debug().Str(obslog.FieldOp, OpHello.String()).Msg("unexpected hello ignored")
		return nil
	}
	var hello Hello
	if err := m.validator.decode("Hello", d, &hello); err != nil {
		m.malformed(s.logger, err)
		return nil
	}
	m.setState(StateAuthenticating)

	identify := Identify{RPCVersion: RPCVersion, EventSubscriptions: m.cfg.Subscriptions}
	if hello.Authentication != nil {
		identify.Authentication = ComputeToken(m.cfg.Password, *hello.Authentication)
		s.authSent = true
	}
	frame, err := encodeFrame(OpIdentify, identify)
	if err != nil {
		return err
	}
	if err := s.conn.WriteFrame(ctx, frame); err != nil {
		return err
	}
	metrics.RecordMessageSent(OpIdentify.String())
	s.span.AddEvent("identify")
	s.logger.Debug().
		Str(obslog.FieldEvent, "obsws.identify_sent").
		Str("server_version", hello.OBSWebSocketVersion).
		Bool("auth", s.authSent).
		Uint32("subscriptions", uint32(identify.EventSubscriptions)).
		Msg("identify sent")
	return nil
}

func (s *session) onIdentified(ctx context.Context, d json.RawMessage) {
	m := s.m
	if m.State() != StateAuthenticating {
		s.logger.Debug().Str(obslog.FieldOp, OpIdentified.String()).Msg("unexpected identified ignored")
		return
	}
	var identified Identified
	if err := m.validator.decode("Identified", d, &identified); err != nil {
		m.malformed(s.logger, err)
		return
	}
	m.setState(StateIdentified)
	s.identified = true
	s.span.AddEvent("identified")
	s.logger.Info().
		Str(obslog.FieldEvent, "obsws.identified").
		Int("rpc_version", identified.NegotiatedRPCVersion).
		Msg("connected")
	s.h.HandleState(ctx, true)
}

func (s *session) onEvent(ctx context.Context, d json.RawMessage) {
	m := s.m
	if m.State() != StateIdentified {
		return
	}
	var f eventFrame
	if err := json.Unmarshal(d, &f); err != nil {
		m.malformed(s.logger, Malformed("event", "invalid_json", err))
		return
	}
	if f.EventType == "" {
		m.malformed(s.logger, Malformed("event", "missing_event_type", nil))
		return
	}
	payload, err := m.validator.DecodeEvent(f.EventType, f.EventData)
	if err != nil {
		m.malformed(s.logger, err)
		return
	}
	ev := Event{Type: f.EventType, Intent: f.EventIntent, Raw: f.EventData, Payload: payload}
	if err := s.h.HandleEvent(ctx, ev); err != nil {
		s.handlerFailed(err, obslog.FieldEventType, f.EventType)
	}
}

func (s *session) onResponse(ctx context.Context, d json.RawMessage) {
	m := s.m
	if m.State() != StateIdentified {
		return
	}
	var f responseFrame
	if err := json.Unmarshal(d, &f); err != nil {
		m.malformed(s.logger, Malformed("response", "invalid_json", err))
		return
	}
	kind, ok := ParseRequestKind(f.RequestType)
	if !ok {
		metrics.RecordResponseUnmatched("unknown")
		s.logger.Debug().Str("request_type", f.RequestType).Msg("response for unknown request type ignored")
		return
	}

	req, matched := m.correlator.Resolve(kind, f.RequestID)
	if !matched {
		metrics.RecordResponseUnmatched(kind.String())
	}

	if f.RequestStatus != nil && !f.RequestStatus.Result {
		metrics.RecordRequestFailed(kind.String())
		s.logger.Debug().
			Str(obslog.FieldRequestKind, kind.String()).
			Int("code", f.RequestStatus.Code).
			Str("comment", f.RequestStatus.Comment).
			Msg("request failed")
		return
	}

	payload, err := m.validator.DecodeResponse(kind, f.ResponseData)
	if err != nil {
		m.malformed(s.logger, err)
		return
	}

	resp := Response{Kind: kind, ID: f.RequestID, Payload: payload}
	if matched {
		resp.Request = &req
		resp.Latency = m.now().Sub(req.IssuedAt)
		metrics.ObserveRoundTrip(kind.String(), resp.Latency)
	}
	if err := s.h.HandleResponse(ctx, resp); err != nil {
		s.handlerFailed(err, obslog.FieldRequestKind, kind.String())
	}
}

func (s *session) handlerFailed(err error, key, value string) {
	if errors.Is(err, ErrMalformed) {
		s.m.malformed(s.logger.With().Str(key, value).Logger(), err)
		return
	}
	s.logger.Warn().Err(err).Str(key, value).Msg("handler failed")
}

func (s *session) writeRequest(ctx context.Context, req Request) error {
	m := s.m
	if m.State() != StateIdentified {
		m.drop(req.Kind, "not_identified")
		return nil
	}
	data := req.Data
	if data == nil {
		data = struct{}{}
	}
	id := m.newID()
	frame, err := encodeFrame(OpRequest, requestFrame{
		RequestType: req.Kind.String(),
		RequestID:   id,
		RequestData: data,
	})
	if err != nil {
		s.logger.Error().Err(err).Str(obslog.FieldRequestKind, req.Kind.String()).Msg("encode request")
		m.drop(req.Kind, "encode_failed")
		return nil
	}
	if err := s.conn.WriteFrame(ctx, frame); err != nil {
		return err
	}
	m.correlator.Register(OutstandingRequest{ID: id, Kind: req.Kind, IssuedAt: m.now()})
	metrics.RecordMessageSent(OpRequest.String())
	metrics.RecordRequestSent(req.Kind.String())
	return nil
}

func (s *session) expire() {
	expired := s.m.correlator.Expire(s.m.now())
	if len(expired) == 0 {
		return
	}
	counts := make(map[RequestKind]int)
	for _, req := range expired {
		counts[req.Kind]++
	}
	for kind, n := range counts {
		metrics.RecordRequestsExpired(kind.String(), n)
	}
	s.logger.Debug().Int("expired", len(expired)).Msg("expired unanswered requests")
}
