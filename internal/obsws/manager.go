// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	obslog "github.com/Nicosch44/obs-info-hud/internal/log"
	"github.com/Nicosch44/obs-info-hud/internal/metrics"
	"github.com/Nicosch44/obs-info-hud/internal/telemetry"
)

const (
	// DefaultReconnectDelay is the constant wait between a close and the next dial.
	DefaultReconnectDelay = 5 * time.Second
	// DefaultRequestTimeout bounds how long an unanswered request is tracked.
	DefaultRequestTimeout = 10 * time.Second

	defaultOutboxSize = 64
)

// Handler consumes session output. All calls happen on the session loop
// goroutine, one at a time, in arrival order. A handler may call Send.
type Handler interface {
	HandleState(ctx context.Context, connected bool)
	HandleEvent(ctx context.Context, ev Event) error
	HandleResponse(ctx context.Context, resp Response) error
}

// Sender accepts outbound requests without blocking.
type Sender interface {
	Send(req Request) bool
}

// Config holds the session settings.
type Config struct {
	URL            string
	Password       string
	Subscriptions  SubscriptionMask
	ReconnectDelay time.Duration
	RequestTimeout time.Duration
	Correlation    string
	OutboxSize     int
}

// Status is a point-in-time view of the manager for health and API output.
type Status struct {
	State                ConnectionState
	SessionID            string
	Outstanding          int
	LastIdentifiedAt     time.Time
	LastDisconnectAt     time.Time
	LastDisconnectReason string
}

// Manager owns the connection lifecycle: dial, handshake, request and
// event delivery, and the constant-delay reconnect after every close.
type Manager struct {
	cfg        Config
	dialer     Dialer
	validator  *Validator
	correlator Correlator
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
	wait       func(ctx context.Context, d time.Duration) bool
	newID      func() string

	state   atomic.Int32
	running atomic.Bool
	outbox  chan Request

	dropLog       *rate.Limiter
	dropSuppress  atomic.Int64
	malformedLog  *rate.Limiter
	malformedSupp atomic.Int64

	mu     sync.RWMutex
	status Status
}

// Option customises a Manager.
type Option func(*Manager)

// WithDialer replaces the gorilla/websocket dialer.
func WithDialer(d Dialer) Option { return func(m *Manager) { m.dialer = d } }

// WithLogger sets the component logger.
func WithLogger(l zerolog.Logger) Option { return func(m *Manager) { m.logger = l } }

// WithClock overrides the time source used for request bookkeeping.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// WithWaiter overrides the reconnect wait. It must return false when ctx ends.
func WithWaiter(wait func(ctx context.Context, d time.Duration) bool) Option {
	return func(m *Manager) { m.wait = wait }
}

// WithIDGenerator overrides request and session id generation.
func WithIDGenerator(gen func() string) Option { return func(m *Manager) { m.newID = gen } }

// WithCorrelator replaces the correlator built from Config.Correlation.
func WithCorrelator(c Correlator) Option { return func(m *Manager) { m.correlator = c } }

// NewManager builds a Manager. Zero config values fall back to defaults.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	if cfg.URL == "" {
		return nil, errors.New("obsws: url is required")
	}
	if cfg.Subscriptions == 0 {
		cfg.Subscriptions = ComputeMask(false)
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.OutboxSize <= 0 {
		cfg.OutboxSize = defaultOutboxSize
	}

	m := &Manager{
		cfg:          cfg,
		dialer:       WSDialer{},
		logger:       obslog.WithComponent("obsws"),
		tracer:       telemetry.Tracer("obs-hud/obsws"),
		now:          time.Now,
		wait:         sleepWithContext,
		newID:        uuid.NewString,
		outbox:       make(chan Request, cfg.OutboxSize),
		dropLog:      rate.NewLimiter(rate.Every(10*time.Second), 1),
		malformedLog: rate.NewLimiter(rate.Every(10*time.Second), 3),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.correlator == nil {
		c, err := NewCorrelator(cfg.Correlation, cfg.RequestTimeout)
		if err != nil {
			return nil, err
		}
		m.correlator = c
	}
	if m.validator == nil {
		v, err := NewValidator()
		if err != nil {
			return nil, err
		}
		m.validator = v
	}
	m.status.State = StateDisconnected
	return m, nil
}

// State returns the current connection state.
func (m *Manager) State() ConnectionState {
	return ConnectionState(m.state.Load())
}

// Status returns a snapshot of the session bookkeeping.
func (m *Manager) Status() Status {
	m.mu.RLock()
	st := m.status
	m.mu.RUnlock()
	st.State = m.State()
	st.Outstanding = m.correlator.Len()
	return st
}

// Send enqueues req for the session loop. Requests offered while the session
// is not Identified, or while the outbox is full, are dropped.
func (m *Manager) Send(req Request) bool {
	return m.Offer(req) == nil
}

// Offer is Send with the drop cause: ErrNotIdentified outside the
// Identified state, ErrOutboxFull when the session loop is behind. It never
// blocks.
func (m *Manager) Offer(req Request) error {
	if m.State() != StateIdentified {
		m.drop(req.Kind, "not_identified")
		return ErrNotIdentified
	}
	select {
	case m.outbox <- req:
		return nil
	default:
		m.drop(req.Kind, "outbox_full")
		return ErrOutboxFull
	}
}

// Run dials, serves the session, and after every close waits
// ReconnectDelay before dialing again. Retries are unbounded. It returns nil
// once ctx is cancelled.
func (m *Manager) Run(ctx context.Context, h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	if !m.running.CompareAndSwap(false, true) {
		return errors.New("obsws: manager already running")
	}
	defer m.running.Store(false)

	for {
		reason := m.connect(ctx, h)
		m.setState(StateDisconnected)
		h.HandleState(context.WithoutCancel(ctx), false)

		m.mu.Lock()
		m.status.SessionID = ""
		m.status.LastDisconnectAt = m.now()
		m.status.LastDisconnectReason = reason
		m.mu.Unlock()
		metrics.RecordDisconnect(reason)

		if ctx.Err() != nil {
			m.logger.Info().Str(obslog.FieldEvent, "obsws.stopped").Msg("session manager stopped")
			return nil
		}

		m.logger.Info().
			Str(obslog.FieldEvent, "obsws.reconnect_scheduled").
			Str(obslog.FieldReason, reason).
			Dur("delay", m.cfg.ReconnectDelay).
			Msg("connection closed, reconnect scheduled")
		metrics.IncReconnectScheduled()
		if !m.wait(ctx, m.cfg.ReconnectDelay) {
			m.logger.Info().Str(obslog.FieldEvent, "obsws.stopped").Msg("session manager stopped")
			return nil
		}
	}
}

func (m *Manager) connect(ctx context.Context, h Handler) string {
	sessionID := m.newID()
	ctx = obslog.ContextWithSessionID(ctx, sessionID)
	logger := obslog.WithContext(ctx, m.logger)

	ctx, span := m.tracer.Start(ctx, "obsws.session", trace.WithAttributes(
		attribute.String("obsws.url", m.cfg.URL),
		attribute.String("obsws.session_id", sessionID),
	))
	defer span.End()

	m.mu.Lock()
	m.status.SessionID = sessionID
	m.mu.Unlock()

	m.setState(StateConnecting)
	logger.Debug().Str(obslog.FieldURL, m.cfg.URL).Msg("dialing")
	conn, err := m.dialer.Dial(ctx, m.cfg.URL)
	if err != nil {
		if ctx.Err() != nil {
			return ReasonShutdown
		}
		metrics.RecordConnectionAttempt(false)
		span.RecordError(err)
		span.SetStatus(codes.Error, ReasonDialFailed)
		logger.Warn().Err(err).
			Str(obslog.FieldEvent, "obsws.dial_failed").
			Str(obslog.FieldURL, m.cfg.URL).
			Msg("connection failed")
		return ReasonDialFailed
	}

	s := &session{m: m, conn: conn, h: h, logger: logger, span: span}
	reason := s.run(ctx)
	metrics.RecordConnectionAttempt(s.identified)
	span.SetAttributes(
		attribute.String("obsws.disconnect_reason", reason),
		attribute.Bool("obsws.identified", s.identified),
	)
	if reason != ReasonShutdown && !s.identified {
		span.SetStatus(codes.Error, reason)
	}
	return reason
}

func (m *Manager) setState(next ConnectionState) {
	prev := ConnectionState(m.state.Swap(int32(next)))
	if prev == next {
		return
	}
	metrics.SetConnectionState(next.String())
	if next == StateIdentified {
		m.mu.Lock()
		m.status.LastIdentifiedAt = m.now()
		m.mu.Unlock()
	}
	m.logger.Debug().
		Str(obslog.FieldOldState, prev.String()).
		Str(obslog.FieldNewState, next.String()).
		Msg("connection state changed")
}

func (m *Manager) drop(kind RequestKind, reason string) {
	metrics.RecordRequestDropped(kind.String(), reason)
	if !m.dropLog.Allow() {
		m.dropSuppress.Add(1)
		return
	}
	m.logger.Debug().
		Str(obslog.FieldEvent, "obsws.request_dropped").
		Str(obslog.FieldRequestKind, kind.String()).
		Str(obslog.FieldReason, reason).
		Int64("suppressed", m.dropSuppress.Swap(0)).
		Msg("request dropped")
}

func (m *Manager) malformed(logger zerolog.Logger, err error) {
	metrics.RecordMalformed(MalformedReason(err))
	if !m.malformedLog.Allow() {
		m.malformedSupp.Add(1)
		return
	}
	logger.Warn().Err(err).
		Str(obslog.FieldEvent, "obsws.malformed").
		Int64("suppressed", m.malformedSupp.Swap(0)).
		Msg("skipping malformed message")
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
