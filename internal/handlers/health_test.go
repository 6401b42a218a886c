package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubChecker struct {
	err error
}

func (c *stubChecker) Health(ctx context.Context) error {
	return c.err
}

func healthResponse(t *testing.T, w *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var response HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("parsing health response: %v", err)
	}
	return response
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		postgres   error
		redis      error
		wantCode   int
		wantStatus string
	}{
		{"all dependencies up", nil, nil, http.StatusOK, "healthy"},
		{"postgres down", errors.New("connection refused"), nil, http.StatusServiceUnavailable, "unhealthy"},
		{"redis down", nil, errors.New("connection timeout"), http.StatusServiceUnavailable, "unhealthy"},
		{"everything down", errors.New("pg"), errors.New("redis"), http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(&stubChecker{err: tt.postgres}, &stubChecker{err: tt.redis})

			w := httptest.NewRecorder()
			h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, w.Code)
			}
			response := healthResponse(t, w)
			if response.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, response.Status)
			}
			if response.Service != "socialvibe-api" {
				t.Errorf("expected service name, got %q", response.Service)
			}
			if response.Timestamp == "" {
				t.Error("expected timestamp")
			}
		})
	}
}

func TestHealth_ChecksNameTheFailure(t *testing.T) {
	h := NewHealthHandler(&stubChecker{err: errors.New("connection refused")}, &stubChecker{})

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	response := healthResponse(t, w)
	if !strings.HasPrefix(response.Checks["postgres"], "down: ") {
		t.Errorf("expected postgres failure detail, got %q", response.Checks["postgres"])
	}
	if response.Checks["redis"] != "ok" {
		t.Errorf("expected redis ok, got %q", response.Checks["redis"])
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name      string
		postgres  error
		redis     error
		wantCode  int
		wantReady bool
	}{
		{"ready", nil, nil, http.StatusOK, true},
		{"postgres down", errors.New("down"), nil, http.StatusServiceUnavailable, false},
		{"redis down", nil, errors.New("down"), http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(&stubChecker{err: tt.postgres}, &stubChecker{err: tt.redis})

			w := httptest.NewRecorder()
			h.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, w.Code)
			}
			if got := decodeBody(t, w)["ready"]; got != tt.wantReady {
				t.Errorf("expected ready %v, got %v", tt.wantReady, got)
			}
		})
	}
}

func TestLive(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	w := httptest.NewRecorder()
	h.Live(w, httptest.NewRequest(http.MethodGet, "/live", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decodeBody(t, w)["alive"]; got != true {
		t.Errorf("expected alive true, got %v", got)
	}
}
