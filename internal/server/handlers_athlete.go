package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleListAthletes(w http.ResponseWriter, r *http.Request) {
	athletes, err := s.db.ListAthletes(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, athletes)
}

func (s *Server) handleGetAthlete(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}
	athlete, ok := s.getAthleteOr404(w, r, athleteID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, athlete)
}

// athleteProfileUpdate is the JSON body for PUT /athletes/{id}. Pointer
// fields distinguish "not sent" from an explicit zero.
type athleteProfileUpdate struct {
	DisplayName     *string  `json:"display_name"`
	WeightKg        *float64 `json:"weight_kg"`
	BodyFatPct      *float64 `json:"body_fat_pct"`
	ManualCP        *float64 `json:"manual_cp"`
	ManualVLamax    *float64 `json:"manual_vlamax"`
	GrossEfficiency *float64 `json:"gross_efficiency"`
	SleepTargetMin  *float64 `json:"sleep_target_min"`
}

func (s *Server) handleUpdateAthlete(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}
	athlete, ok := s.getAthleteOr404(w, r, athleteID)
	if !ok {
		return
	}

	var upd athleteProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if upd.DisplayName != nil {
		athlete.DisplayName = *upd.DisplayName
	}
	if upd.WeightKg != nil {
		if *upd.WeightKg <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight_kg must be positive"})
			return
		}
		athlete.WeightKg = *upd.WeightKg
	}
	if upd.BodyFatPct != nil {
		if *upd.BodyFatPct < 0 || *upd.BodyFatPct >= 100 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body_fat_pct must be within [0, 100)"})
			return
		}
		athlete.BodyFatPct = *upd.BodyFatPct
	}
	if upd.ManualCP != nil {
		athlete.ManualCP = upd.ManualCP
	}
	if upd.ManualVLamax != nil {
		athlete.ManualVLamax = upd.ManualVLamax
	}
	if upd.GrossEfficiency != nil {
		if *upd.GrossEfficiency <= 0 || *upd.GrossEfficiency > 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "gross_efficiency must be within (0, 1]"})
			return
		}
		athlete.GrossEfficiency = *upd.GrossEfficiency
	}
	if upd.SleepTargetMin != nil {
		athlete.SleepTargetMin = *upd.SleepTargetMin
	}

	if err := s.db.UpdateAthleteProfile(r.Context(), athlete); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, athlete)
}

func (s *Server) handleQuerySessions(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sessions, err := s.db.QuerySessions(r.Context(), athleteID, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleQueryBiometrics(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "metric parameter required"})
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if r.URL.Query().Get("agg") == "daily" {
		points, err := s.db.GetBiometricSeries(r.Context(), athleteID, metric, start, end)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, points)
		return
	}

	rows, err := s.db.QueryBiometrics(r.Context(), athleteID, metric, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleLatestBiometrics(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}
	rows, err := s.db.GetLatestBiometrics(r.Context(), athleteID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handlePowerCurve returns the latest effort per canonical duration, or,
// when a start/end range is given, every test effort in that range.
func (s *Server) handlePowerCurve(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	if q.Get("start") != "" || q.Get("end") != "" {
		start, end, err := parseTimeRange(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		tests, err := s.db.QueryPowerTests(r.Context(), athleteID, start, end)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, tests)
		return
	}

	curve, err := s.db.LatestPowerCurve(r.Context(), athleteID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, curve)
}
