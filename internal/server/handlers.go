package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/veloform/veloform/internal/ingest"
	"github.com/veloform/veloform/internal/models"
	"github.com/veloform/veloform/internal/storage"
)

func (s *Server) handleWearableIngest(w http.ResponseWriter, r *http.Request) {
	var payload models.WearablePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	athleteID := athleteIDFromContext(r)
	start := time.Now()
	result, err := s.wearable.Ingest(r.Context(), &payload, athleteID)
	s.logSync(athleteID, "wearable", result, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		s.log.Error("wearable ingest error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTrainerIngest(w http.ResponseWriter, r *http.Request) {
	var payload models.TrainerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	athleteID := athleteIDFromContext(r)
	start := time.Now()
	result, err := s.trainer.Ingest(r.Context(), &payload, athleteID)
	s.logSync(athleteID, "trainer", result, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		s.log.Error("trainer ingest error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, athleteInfoFromContext(r))
}

func (s *Server) handleAllowlist(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.db.GetAllowedMetrics(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}
	stats, err := s.db.GetDataStats(r.Context(), athleteID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSyncLogs(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.db.QuerySyncLogs(r.Context(), athleteID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// logSync records a sync operation's result to the sync_logs table.
func (s *Server) logSync(athleteID int, source string, result *ingest.Result, syncErr error, durationMs int) {
	status := "success"
	var errMsg *string
	if syncErr != nil {
		status = "error"
		msg := syncErr.Error()
		errMsg = &msg
	}

	l := storage.SyncLog{
		AthleteID:          athleteID,
		Source:             source,
		Status:             status,
		RowsReceived:       result.MetricsReceived + result.SessionsReceived + result.PowerTestsReceived,
		RowsInserted:       result.MetricsInserted,
		SessionsInserted:   result.SessionsInserted,
		PowerTestsInserted: result.PowerTestsInserted,
		DurationMs:         &durationMs,
		ErrorMessage:       errMsg,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := s.db.InsertSyncLog(ctx, l); err != nil {
		s.log.Error("failed to log sync", "source", source, "error", err)
	}
}

// athleteParam parses the {id} route parameter and verifies the athlete
// exists. A false return means the response has already been written.
func athleteParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid athlete ID"})
		return 0, false
	}
	return id, true
}

// getAthleteOr404 loads the athlete row, writing a 404 on ErrNotFound.
func (s *Server) getAthleteOr404(w http.ResponseWriter, r *http.Request, athleteID int) (*models.AthleteRow, bool) {
	athlete, err := s.db.GetAthlete(r.Context(), athleteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "athlete not found"})
		} else {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return nil, false
	}
	return athlete, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days
		end = time.Now()
		start = end.AddDate(0, 0, -7)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
