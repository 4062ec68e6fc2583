// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nicosch44/obs-info-hud/internal/log"
)

// AccessLog writes one structured entry per request. Probe endpoints log at
// trace level so that kubelet-style polling stays quiet.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		logger := log.WithComponentFromContext(r.Context(), "api")
		level := zerolog.InfoLevel
		switch {
		case rw.statusCode >= 500:
			level = zerolog.ErrorLevel
		case isProbe(r.URL.Path):
			level = zerolog.TraceLevel
		case rw.statusCode >= 400:
			level = zerolog.WarnLevel
		}
		logger.WithLevel(level).
			Str(log.FieldEvent, "http.request").
			Str("method", r.Method).
			Str("path", routePath(r)).
			Int("status", rw.statusCode).
			Int("bytes", rw.bytesWritten).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("http request")
	})
}

func isProbe(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics":
		return true
	}
	return false
}

// statusWriter records the status code and body size written by a handler.
type statusWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
	written      bool
}

func (sw *statusWriter) WriteHeader(statusCode int) {
	if !sw.written {
		sw.statusCode = statusCode
		sw.written = true
	}
	sw.ResponseWriter.WriteHeader(statusCode)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.written {
		sw.WriteHeader(http.StatusOK)
	}
	n, err := sw.ResponseWriter.Write(b)
	sw.bytesWritten += n
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}
