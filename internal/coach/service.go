// Package coach computes athlete-facing assessments on top of the
// storage layer: metabolic profiles, zone tables, training load, and
// daily readiness. Both the HTTP handlers and the local MCP mode share
// this service.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/veloform/veloform/internal/config"
	"github.com/veloform/veloform/internal/engine/load"
	"github.com/veloform/veloform/internal/engine/metabolic"
	"github.com/veloform/veloform/internal/engine/readiness"
	"github.com/veloform/veloform/internal/models"
	"github.com/veloform/veloform/internal/storage"
)

const defaultBaselineDays = 42

// Service holds dependencies for assessment computation.
type Service struct {
	db     *storage.DB
	engine config.EngineConfig
	log    *slog.Logger
}

// NewService creates a Service.
func NewService(db *storage.DB, engineCfg config.EngineConfig, log *slog.Logger) *Service {
	return &Service{db: db, engine: engineCfg, log: log}
}

// MetabolicResult wraps a model with its provenance: a stored snapshot
// or a live fit from the latest power curve.
type MetabolicResult struct {
	Model      *metabolic.Model `json:"model"`
	Source     string           `json:"source"` // "snapshot" or "live"
	SnapshotID *uuid.UUID       `json:"snapshot_id,omitempty"`
	CreatedAt  *time.Time       `json:"created_at,omitempty"`
}

// ZonesResult is the athlete's zone table with physiological markers.
type ZonesResult struct {
	CriticalPowerWatts float64            `json:"critical_power_watts"`
	Zones              []metabolic.Zone   `json:"zones"`
	Markers            []metabolic.Marker `json:"markers"`
	Source             string             `json:"source"`
}

// LoadResult is the training load series for a trailing window.
type LoadResult struct {
	Days    []load.DailyPoint `json:"days"`
	Summary load.Summary      `json:"summary"`
	Form    string            `json:"form"`
}

// ReadinessResult is the daily assessment plus the snapshot it was
// computed from.
type ReadinessResult struct {
	Date       string              `json:"date"`
	Assessment *readiness.Result   `json:"assessment"`
	Snapshot   *readiness.Snapshot `json:"snapshot"`
}

// MetabolicProfile returns the current snapshot's model when one exists,
// otherwise a live fit from the latest power curve.
func (s *Service) MetabolicProfile(ctx context.Context, athleteID int) (*MetabolicResult, error) {
	athlete, err := s.db.GetAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	snap, err := s.db.GetCurrentSnapshot(ctx, athleteID)
	if err == nil {
		var m metabolic.Model
		if jerr := json.Unmarshal(snap.ModelJSON, &m); jerr == nil {
			return &MetabolicResult{
				Model:      &m,
				Source:     "snapshot",
				SnapshotID: &snap.ID,
				CreatedAt:  &snap.CreatedAt,
			}, nil
		}
		s.log.Warn("corrupt snapshot model, falling back to live fit", "snapshot_id", snap.ID)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	m, err := s.fitModel(ctx, athlete)
	if err != nil {
		return nil, err
	}
	return &MetabolicResult{Model: m, Source: "live"}, nil
}

// FitAndStore runs a fresh fit and stores it as a snapshot, optionally
// promoting it to the current profile.
func (s *Service) FitAndStore(ctx context.Context, athleteID int, promote bool) (*MetabolicResult, error) {
	athlete, err := s.db.GetAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	m, err := s.fitModel(ctx, athlete)
	if err != nil {
		return nil, err
	}

	modelJSON, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling model: %w", err)
	}

	row := storage.NewSnapshotRow(athleteID, time.Now())
	row.CriticalPowerWatts = m.CriticalPowerWatts
	row.VLamax = m.VLamax
	row.Fitted = m.Fitted
	row.ModelJSON = modelJSON

	if err := s.db.InsertSnapshot(ctx, row, promote); err != nil {
		return nil, err
	}

	return &MetabolicResult{
		Model:      m,
		Source:     "snapshot",
		SnapshotID: &row.ID,
		CreatedAt:  &row.CreatedAt,
	}, nil
}

// ZoneTable derives the seven-zone table from the athlete's profile.
func (s *Service) ZoneTable(ctx context.Context, athleteID int) (*ZonesResult, error) {
	athlete, err := s.db.GetAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	profile, err := s.MetabolicProfile(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	return &ZonesResult{
		CriticalPowerWatts: profile.Model.CriticalPowerWatts,
		Zones:              metabolic.Zones(profile.Model, s.grossEfficiency(athlete)),
		Markers:            metabolic.Markers(profile.Model),
		Source:             profile.Source,
	}, nil
}

// TrainingLoad computes the CTL/ATL/TSB series for a trailing window
// ending today.
func (s *Service) TrainingLoad(ctx context.Context, athleteID int, days int) (*LoadResult, error) {
	now := time.Now()
	rows, err := s.db.SessionHistory(ctx, athleteID, now)
	if err != nil {
		return nil, err
	}

	series := load.Compute(sessionRowsToLoad(rows), days, now)

	form := ""
	if n := len(series.Days); n > 0 {
		form = load.FormDescription(series.Days[n-1].Balance)
	}

	return &LoadResult{Days: series.Days, Summary: series.Summary, Form: form}, nil
}

// DailyReadiness assembles the snapshot for one day and runs the full
// assessment over it.
func (s *Service) DailyReadiness(ctx context.Context, athleteID int, day time.Time) (*ReadinessResult, error) {
	athlete, err := s.db.GetAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	snap, err := s.buildSnapshot(ctx, athlete, day)
	if err != nil {
		return nil, err
	}

	result := readiness.Analyze(snap)

	// Zone and intensity detail from yesterday's sessions refines the
	// TSS-only strain estimate when available.
	if strain, ok := s.yesterdayStrain(ctx, athleteID, day); ok {
		result.StrainScore = strain
	}

	return &ReadinessResult{
		Date:       day.Format("2006-01-02"),
		Assessment: result,
		Snapshot:   snap,
	}, nil
}

// fitModel assembles a FitInput from the athlete's latest power curve and
// profile, then runs the fit.
func (s *Service) fitModel(ctx context.Context, athlete *models.AthleteRow) (*metabolic.Model, error) {
	curve, err := s.db.LatestPowerCurve(ctx, athlete.ID)
	if err != nil {
		return nil, err
	}

	points := make([]metabolic.PowerDurationPoint, len(curve))
	for i, row := range curve {
		watts := row.PowerWatts
		points[i] = metabolic.PowerDurationPoint{DurationSec: row.DurationSec, PowerWatts: &watts}
	}

	in := metabolic.FitInput{
		Points:          points,
		WeightKg:        athlete.WeightKg,
		BodyFatPct:      athlete.BodyFatPct,
		GrossEfficiency: s.grossEfficiency(athlete),
		TauLacticSec:    s.engine.TauLacticSec,
	}
	if athlete.ManualCP != nil {
		in.ManualCP = *athlete.ManualCP
	}
	if athlete.ManualVLamax != nil {
		in.ManualVLamax = *athlete.ManualVLamax
	}

	return metabolic.Fit(in)
}

// buildSnapshot assembles a readiness snapshot for one day: that day's
// biometrics, trailing baselines, and yesterday's training load.
func (s *Service) buildSnapshot(ctx context.Context, athlete *models.AthleteRow, day time.Time) (*readiness.Snapshot, error) {
	values, err := s.db.DayValues(ctx, athlete.ID, day)
	if err != nil {
		return nil, err
	}

	snap := &readiness.Snapshot{}
	assign := func(dst **float64, key string) {
		if v, ok := values[key]; ok {
			val := v
			*dst = &val
		}
	}
	assign(&snap.HRV, "hrv_rmssd")
	assign(&snap.RestingHR, "resting_hr")
	assign(&snap.SleepDurationMin, "sleep_duration_min")
	assign(&snap.SleepScore, "sleep_score")
	assign(&snap.SleepDeepMin, "sleep_deep_min")
	assign(&snap.RespiratoryRate, "respiratory_rate")
	assign(&snap.SpO2, "spo2")

	if v, ok := values["feeling"]; ok {
		feeling := feelingFromOrdinal(v)
		snap.Feeling = &feeling
	}
	assignInt := func(dst **int, key string) {
		if v, ok := values[key]; ok {
			val := int(math.Round(v))
			*dst = &val
		}
	}
	assignInt(&snap.Soreness, "soreness")
	assignInt(&snap.StressLevel, "stress_level")
	assignInt(&snap.Motivation, "motivation")

	target := athlete.SleepTargetMin
	if target <= 0 {
		target = s.engine.SleepTargetMin
	}
	if target > 0 {
		snap.SleepTargetMin = &target
	}

	baselineDays := s.engine.BaselineDays
	if baselineDays <= 0 {
		baselineDays = defaultBaselineDays
	}
	if base, ok, err := s.db.MetricBaseline(ctx, athlete.ID, "hrv_rmssd", day, baselineDays); err != nil {
		return nil, err
	} else if ok {
		snap.HRVBaseline = &base
	}
	if base, ok, err := s.db.MetricBaseline(ctx, athlete.ID, "resting_hr", day, baselineDays); err != nil {
		return nil, err
	} else if ok {
		snap.RestingHRBaseline = &base
	}

	// Training load as of yesterday.
	yesterday := day.AddDate(0, 0, -1)
	rows, err := s.db.SessionHistory(ctx, athlete.ID, day)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		series := load.Compute(sessionRowsToLoad(rows), defaultBaselineDays, yesterday)
		if n := len(series.Days); n > 0 {
			last := series.Days[n-1]
			ctl, atl := last.ChronicLoad, last.AcuteLoad
			snap.ChronicLoad = &ctl
			snap.AcuteLoad = &atl
		}
	}

	ySessions, err := s.db.SessionsOnDay(ctx, athlete.ID, yesterday)
	if err != nil {
		return nil, err
	}
	if len(ySessions) > 0 {
		var total float64
		for _, row := range ySessions {
			total += row.TrainingStress
		}
		snap.YesterdayTSS = &total
	}

	return snap, nil
}

// yesterdayStrain computes session-level strain for the day before the
// snapshot, using zone splits and intensity where the sessions carry them.
func (s *Service) yesterdayStrain(ctx context.Context, athleteID int, day time.Time) (float64, bool) {
	rows, err := s.db.SessionsOnDay(ctx, athleteID, day.AddDate(0, 0, -1))
	if err != nil {
		s.log.Warn("session strain lookup failed", "error", err)
		return 0, false
	}
	if len(rows) == 0 {
		return 0, false
	}

	strains := make([]float64, 0, len(rows))
	for _, row := range rows {
		tss := row.TrainingStress
		effort := readiness.SessionEffort{
			TSS:             &tss,
			DurationMin:     row.DurationMin,
			IntensityFactor: row.IntensityFactor,
		}
		if row.Z1Min != nil {
			effort.Zones = &readiness.ZoneMinutes{
				Z1: *row.Z1Min, Z2: deref(row.Z2Min), Z3: deref(row.Z3Min),
				Z4: deref(row.Z4Min), Z5: deref(row.Z5Min),
			}
		}
		strains = append(strains, readiness.Strain(effort))
	}
	return readiness.DailyStrain(strains), true
}

// grossEfficiency resolves the athlete's per-profile value, then the
// server config, then the engine default.
func (s *Service) grossEfficiency(athlete *models.AthleteRow) float64 {
	if athlete.GrossEfficiency > 0 {
		return athlete.GrossEfficiency
	}
	if s.engine.GrossEfficiency > 0 {
		return s.engine.GrossEfficiency
	}
	return metabolic.DefaultGrossEfficiency
}

func sessionRowsToLoad(rows []models.SessionRow) []load.Session {
	sessions := make([]load.Session, len(rows))
	for i, row := range rows {
		sessions[i] = load.Session{
			Date:           row.Date,
			TrainingStress: row.TrainingStress,
			DurationMin:    row.DurationMin,
		}
	}
	return sessions
}

// feelingFromOrdinal maps the stored 1-5 feeling ordinal to its label.
func feelingFromOrdinal(v float64) string {
	switch int(math.Round(v)) {
	case 1:
		return "bad"
	case 2:
		return "tired"
	case 3:
		return "ok"
	case 4:
		return "good"
	case 5:
		return "great"
	default:
		return "ok"
	}
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
