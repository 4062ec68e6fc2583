// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the HUD state and probe endpoints over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Nicosch44/obs-info-hud/internal/api/middleware"
	"github.com/Nicosch44/obs-info-hud/internal/health"
	"github.com/Nicosch44/obs-info-hud/internal/hud"
	"github.com/Nicosch44/obs-info-hud/internal/log"
	"github.com/Nicosch44/obs-info-hud/internal/obsws"
)

// StateSource provides the current HUD snapshot.
type StateSource interface {
	Snapshot() hud.Snapshot
}

// Config holds the HTTP surface options.
type Config struct {
	RateLimit      int // requests per minute per client, zero disables
	AllowedOrigins []string
	TracingService string // empty disables tracing
	EnableMetrics  bool
}

// Deps are the collaborators the handlers read from. Session may be nil.
type Deps struct {
	Health  *health.Manager
	State   StateSource
	Session health.SessionStatus
}

// Server owns the chi router for the HUD API.
type Server struct {
	router chi.Router
	deps   Deps
	logger zerolog.Logger
}

// New constructs the server and registers its routes.
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		deps:   deps,
		logger: log.WithComponent("api"),
	}

	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:            true,
		AllowedOrigins:        cfg.AllowedOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         cfg.EnableMetrics,
		TracingService:        cfg.TracingService,
		EnableLogging:         true,
	})
	s.routes(r, cfg)
	s.router = r
	return s
}

func (s *Server) routes(r chi.Router, cfg Config) {
	// Probes are exempt from rate limiting.
	r.Get("/healthz", s.deps.Health.ServeHealth)
	r.Get("/readyz", s.deps.Health.ServeReady)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(middleware.APIRateLimit(cfg.RateLimit))
		}
		r.Get("/state", s.handleState)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	})
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SessionView is the OBS session part of the state response.
type SessionView struct {
	State                string     `json:"state"`
	SessionID            string     `json:"sessionId,omitempty"`
	Outstanding          int        `json:"outstanding"`
	LastIdentifiedAt     *time.Time `json:"lastIdentifiedAt,omitempty"`
	LastDisconnectAt     *time.Time `json:"lastDisconnectAt,omitempty"`
	LastDisconnectReason string     `json:"lastDisconnectReason,omitempty"`
}

// StateResponse is the body of GET /api/v1/state.
type StateResponse struct {
	hud.Snapshot
	Session *SessionView `json:"session,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	resp := StateResponse{Snapshot: s.deps.State.Snapshot()}
	if s.deps.Session != nil {
		resp.Session = sessionView(s.deps.Session.Status())
	}

	w.Header().Set("Cache-Control", "no-store")
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger := log.WithContext(r.Context(), s.logger)
		logger.Warn().Err(err).Str(log.FieldEvent, "api.state_encode_failed").Msg("failed to write state response")
	}
}

func sessionView(st obsws.Status) *SessionView {
	v := &SessionView{
		State:                st.State.String(),
		SessionID:            st.SessionID,
		Outstanding:          st.Outstanding,
		LastDisconnectReason: st.LastDisconnectReason,
	}
	if !st.LastIdentifiedAt.IsZero() {
		t := st.LastIdentifiedAt
		v.LastIdentifiedAt = &t
	}
	if !st.LastDisconnectAt.IsZero() {
		t := st.LastDisconnectAt
		v.LastDisconnectAt = &t
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	_ = writeJSON(w, status, map[string]string{"error": code})
}
