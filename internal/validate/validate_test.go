// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validate

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidator_Port(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"obs default", 4455, false},
		{"valid port 65535", 65535, false},
		{"valid port 1", 1, false},
		{"invalid port 0", 0, true},
		{"invalid port -1", -1, true},
		{"invalid port 65536", 65536, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Port("port", tt.port)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_PositiveDuration(t *testing.T) {
	v := New()
	v.PositiveDuration("a", time.Second)
	if !v.IsValid() {
		t.Fatalf("unexpected error: %v", v.Err())
	}
	v.PositiveDuration("b", 0)
	v.PositiveDuration("c", -time.Millisecond)
	if got := len(v.Errors()); got != 2 {
		t.Fatalf("expected 2 errors, got %d", got)
	}
}

func TestValidator_OneOf(t *testing.T) {
	v := New()
	v.OneOf("correlation", "kind", []string{"kind", "id"})
	if !v.IsValid() {
		t.Fatalf("unexpected error: %v", v.Err())
	}
	v.OneOf("correlation", "fifo", []string{"kind", "id"})
	if v.IsValid() {
		t.Fatal("expected error for unknown value")
	}
}

func TestValidator_FloatRange(t *testing.T) {
	v := New()
	v.FloatRange("rate", 0.5, 0, 1)
	if !v.IsValid() {
		t.Fatalf("unexpected error: %v", v.Err())
	}
	v.FloatRange("rate", 1.5, 0, 1)
	if v.IsValid() {
		t.Fatal("expected error for out-of-range value")
	}
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"127.0.0.1", "127.0.0.1", false},
		{"OBS.local", "obs.local", false},
		{"studio.example.", "studio.example", false},
		{"[::1]", "::1", false},
		{"bücher.example", "xn--bcher-kva.example", false},
		{"", "", true},
		{"host:4455", "", true},
		{"ws://host", "", true},
		{"fe80::1%eth0", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeHost(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeHost(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidator_ListenAddr(t *testing.T) {
	for _, ok := range []string{":8089", "127.0.0.1:9099", "localhost:0"} {
		v := New()
		v.ListenAddr("listen", ok)
		if !v.IsValid() {
			t.Errorf("%q: unexpected error: %v", ok, v.Err())
		}
	}
	for _, bad := range []string{"8089", ":http-alt", ":70000"} {
		v := New()
		v.ListenAddr("listen", bad)
		if v.IsValid() {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestValidator_LogLevel(t *testing.T) {
	v := New()
	v.LogLevel("logLevel", "INFO")
	v.LogLevel("logLevel", "trace")
	if !v.IsValid() {
		t.Fatalf("unexpected error: %v", v.Err())
	}
	v.LogLevel("logLevel", "verbose")
	if v.IsValid() {
		t.Fatal("expected error for unknown level")
	}
}

func TestValidationError_Aggregates(t *testing.T) {
	v := New()
	v.Port("obs.port", 0)
	v.NotEmpty("obs.address", " ")

	err := v.Err()
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(ve.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(ve.Errors()))
	}
	if !strings.Contains(err.Error(), "obs.port") || !strings.Contains(err.Error(), "; ") {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if New().Err() != nil {
		t.Error("empty validator must return nil error")
	}
}
