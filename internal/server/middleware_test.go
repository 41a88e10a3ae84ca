package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestDevIdentity verifies that the dev identity middleware sets
// athlete_id=1 for all requests, enabling local development without
// Tailscale.
func TestDevIdentity(t *testing.T) {
	var gotAthleteID int
	handler := DevIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAthleteID = athleteIDFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if gotAthleteID != 1 {
		t.Errorf("athleteID = %d, want 1", gotAthleteID)
	}
}

// TestAthleteIDFromContextDefault verifies the fallback when no identity
// middleware has set a value.
func TestAthleteIDFromContextDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := athleteIDFromContext(req); id != 1 {
		t.Errorf("athleteIDFromContext without context value = %d, want 1", id)
	}
}

// TestAthleteIDFromContextSet verifies the value stored by identity
// middleware is returned.
func TestAthleteIDFromContextSet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), athleteIDKey, 42)
	req = req.WithContext(ctx)

	if id := athleteIDFromContext(req); id != 42 {
		t.Errorf("athleteIDFromContext = %d, want 42", id)
	}
}

// TestAthleteInfoFromContextSet verifies AthleteInfo is extracted from
// context when set.
func TestAthleteInfoFromContextSet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), athleteInfoKey, AthleteInfo{Login: "alice@example.com", DisplayName: "Alice"})
	req = req.WithContext(ctx)

	info := athleteInfoFromContext(req)
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q, want %q", info.Login, "alice@example.com")
	}
	if info.DisplayName != "Alice" {
		t.Errorf("displayName = %q, want %q", info.DisplayName, "Alice")
	}
}

// TestAPIKeyAuth verifies the three auth outcomes: missing, wrong, valid.
func TestAPIKeyAuth(t *testing.T) {
	handler := APIKeyAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "nope", http.StatusForbidden},
		{"valid key", "secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// TestRequestLogging verifies that the logging middleware calls the next
// handler and passes status and body through unchanged.
func TestRequestLogging(t *testing.T) {
	log := slog.Default()
	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if rec.Body.String() != `{"ok":true}` {
		t.Errorf("body = %q, want pass-through", rec.Body.String())
	}
}

// TestResponseRecorderCounts verifies the recorder tallies written bytes.
func TestResponseRecorderCounts(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseRecorder{ResponseWriter: rec, status: http.StatusOK}

	rw.WriteHeader(http.StatusAccepted)
	rw.Write([]byte("hello "))
	rw.Write([]byte("athlete"))

	if rw.status != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rw.status)
	}
	if rw.bytes != len("hello athlete") {
		t.Errorf("bytes = %d, want %d", rw.bytes, len("hello athlete"))
	}
}

// TestCORSHeaders verifies that CORS headers are set on responses.
func TestCORSHeaders(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS origin = %q, want *", got)
	}
}

// TestCORSPreflight verifies that OPTIONS requests get 204 with CORS
// headers and never reach the next handler.
func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called for OPTIONS")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
