package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/veloform/veloform/internal/engine/metabolic"
	"github.com/veloform/veloform/internal/storage"
)

// writeEngineError maps service errors to HTTP responses. A fit that
// lacks data is a client-correctable condition, not a server fault.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "athlete not found"})
	case errors.Is(err, metabolic.ErrInsufficientData):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": "not enough test data to fit a metabolic profile: sync at least 5 power tests or set manual_cp on the athlete profile",
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (s *Server) handleGetMetabolic(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}

	profile, err := s.svc.MetabolicProfile(r.Context(), athleteID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleFitMetabolic(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}

	// Promote the new snapshot to current unless the body says otherwise.
	promote := true
	if r.Body != nil && r.ContentLength != 0 {
		var body struct {
			Promote *bool `json:"promote"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
		if body.Promote != nil {
			promote = *body.Promote
		}
	}

	profile, err := s.svc.FitAndStore(r.Context(), athleteID, promote)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	snapshots, err := s.db.ListSnapshots(r.Context(), athleteID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snapshots)
}

func (s *Server) handlePromoteSnapshot(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}
	snapshotID, err := uuid.Parse(chi.URLParam(r, "snapshotID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid snapshot ID"})
		return
	}

	if err := s.db.PromoteSnapshot(r.Context(), athleteID, snapshotID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "snapshot not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "promoted"})
}

func (s *Server) handleGetZones(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}

	zones, err := s.svc.ZoneTable(r.Context(), athleteID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, zones)
}

func (s *Server) handleGetLoad(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}

	days := 90
	if d := r.URL.Query().Get("days"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			days = parsed
		}
	}

	result, err := s.svc.TrainingLoad(r.Context(), athleteID, days)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetReadiness(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}

	day := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date (YYYY-MM-DD): " + err.Error()})
			return
		}
		day = parsed
	}

	result, err := s.svc.DailyReadiness(r.Context(), athleteID, day)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
