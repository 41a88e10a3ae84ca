package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/veloform/veloform/internal/coach"
	"github.com/veloform/veloform/internal/engine/metabolic"
	"github.com/veloform/veloform/internal/storage"
)

// newTestServer creates an httptest server that routes requests to handler
// functions keyed by path. Verifies the HTTP client sends correct paths and
// query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestMetabolicProfile verifies the client hits the athlete-scoped path and
// decodes the wrapped model.
func TestMetabolicProfile(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/athletes/3/metabolic": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, coach.MetabolicResult{
				Model:  &metabolic.Model{CriticalPowerWatts: 265, VLamax: 0.45, Fitted: true},
				Source: "snapshot",
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	profile, err := client.MetabolicProfile(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if profile.Model.CriticalPowerWatts != 265 {
		t.Errorf("cp = %v, want 265", profile.Model.CriticalPowerWatts)
	}
	if profile.Source != "snapshot" {
		t.Errorf("source = %q, want snapshot", profile.Source)
	}
}

// TestTrainingLoad verifies the days query param and series decoding.
func TestTrainingLoad(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/athletes/1/load": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("days"); got != "28" {
				t.Errorf("days=%q, want 28", got)
			}
			writeTestJSON(t, w, coach.LoadResult{Form: "Fresh"})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	result, err := client.TrainingLoad(context.Background(), 1, 28)
	if err != nil {
		t.Fatal(err)
	}
	if result.Form != "Fresh" {
		t.Errorf("form = %q, want Fresh", result.Form)
	}
}

// TestDailyReadiness verifies the date query param and assessment decoding.
func TestDailyReadiness(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/athletes/1/readiness": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("date"); got != "2026-03-15" {
				t.Errorf("date=%q, want 2026-03-15", got)
			}
			writeTestJSON(t, w, coach.ReadinessResult{Date: "2026-03-15"})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	result, err := client.DailyReadiness(context.Background(), 1, day)
	if err != nil {
		t.Fatal(err)
	}
	if result.Date != "2026-03-15" {
		t.Errorf("date = %q, want 2026-03-15", result.Date)
	}
}

// TestBiometricSeries verifies the metric/agg query params and array decoding.
func TestBiometricSeries(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/athletes/1/biometrics": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("metric"); got != "hrv_rmssd" {
				t.Errorf("metric=%q, want hrv_rmssd", got)
			}
			if got := r.URL.Query().Get("agg"); got != "daily" {
				t.Errorf("agg=%q, want daily", got)
			}

			avg := 62.0
			writeTestJSON(t, w, []storage.BiometricSeries{
				{Time: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Avg: &avg, Count: 1},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)

	points, err := client.BiometricSeries(context.Background(), 1, "hrv_rmssd", start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if *points[0].Avg != 62.0 {
		t.Errorf("avg = %v, want 62", *points[0].Avg)
	}
}

// TestAllowedMetrics verifies the allowlist endpoint returns a flat array.
func TestAllowedMetrics(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/allowlist": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []storage.AllowedMetric{
				{MetricName: "hrv_rmssd", Category: "recovery", Enabled: true},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	metrics, err := client.AllowedMetrics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(metrics) != 1 {
		t.Fatalf("got %d metrics, want 1", len(metrics))
	}
	if metrics[0].MetricName != "hrv_rmssd" {
		t.Errorf("metric_name=%q, want hrv_rmssd", metrics[0].MetricName)
	}
}

// TestDataStats verifies the stats endpoint decoding.
func TestDataStats(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/athletes/1/stats": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, storage.DataStats{TotalSessions: 120, TotalPowerTests: 18})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	stats, err := client.DataStats(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalSessions != 120 {
		t.Errorf("total_sessions = %d, want 120", stats.TotalSessions)
	}
}

// TestHTTPClientServerError verifies the client returns an error on non-200
// responses.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/allowlist": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"database down"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	_, err := client.AllowedMetrics(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
