package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info AthleteInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
}

// TestHandleMeIdentity verifies the endpoint returns the identity set in
// context.
func TestHandleMeIdentity(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), athleteInfoKey, AthleteInfo{Login: "alice@example.com", DisplayName: "Alice"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	var info AthleteInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q, want %q", info.Login, "alice@example.com")
	}
}

func TestParseTimeRange(t *testing.T) {
	t.Run("default last 7 days", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		start, end, err := parseTimeRange(req)
		if err != nil {
			t.Fatalf("parseTimeRange error: %v", err)
		}
		if d := end.Sub(start); d != 7*24*time.Hour {
			t.Errorf("default range = %v, want 168h", d)
		}
	})

	t.Run("date-only range is end-inclusive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?start=2026-01-01&end=2026-01-31", nil)
		start, end, err := parseTimeRange(req)
		if err != nil {
			t.Fatalf("parseTimeRange error: %v", err)
		}
		if start.Format("2006-01-02") != "2026-01-01" {
			t.Errorf("start = %v", start)
		}
		if end.Format("2006-01-02") != "2026-02-01" {
			t.Errorf("end = %v, want start of Feb 1 (inclusive Jan 31)", end)
		}
	})

	t.Run("rfc3339", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?start=2026-01-01T06:00:00Z&end=2026-01-02T06:00:00Z", nil)
		start, end, err := parseTimeRange(req)
		if err != nil {
			t.Fatalf("parseTimeRange error: %v", err)
		}
		if end.Sub(start) != 24*time.Hour {
			t.Errorf("range = %v, want 24h", end.Sub(start))
		}
	})

	t.Run("garbage start", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?start=yesterday", nil)
		if _, _, err := parseTimeRange(req); err == nil {
			t.Error("parseTimeRange should fail on garbage start")
		}
	})
}
