package trainer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/veloform/veloform/internal/engine/metabolic"
	"github.com/veloform/veloform/internal/ingest"
	"github.com/veloform/veloform/internal/models"
	"github.com/veloform/veloform/internal/storage"
)

// Provider processes training app sync payloads: completed sessions with
// stress scores plus maximal power-duration test efforts.
type Provider struct {
	db  *storage.DB
	log *slog.Logger
}

// NewProvider creates a new trainer ingest provider.
func NewProvider(db *storage.DB, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest stores sessions and power tests from a trainer payload.
// Duplicate sessions (same athlete, date, name) and duplicate tests
// (same athlete, date, duration) are skipped.
func (p *Provider) Ingest(ctx context.Context, payload *models.TrainerPayload, athleteID int) (*ingest.Result, error) {
	result := &ingest.Result{}

	var sessionRows []models.SessionRow
	for _, s := range payload.Data.Sessions {
		result.SessionsReceived++
		if s.Date.IsZero() {
			p.log.Warn("skipping session with zero date", "name", s.Name)
			continue
		}
		if s.TrainingStress < 0 {
			p.log.Warn("skipping session with negative stress", "name", s.Name, "tss", s.TrainingStress)
			continue
		}
		row := models.SessionRow{
			ID:              uuid.New(),
			AthleteID:       athleteID,
			Date:            s.Date.Time,
			Name:            s.Name,
			DurationMin:     s.DurationMin,
			TrainingStress:  s.TrainingStress,
			IntensityFactor: s.IntensityFactor,
			Source:          "trainer",
		}
		if z := s.ZoneMinutes; z != nil {
			row.Z1Min = &z.Z1
			row.Z2Min = &z.Z2
			row.Z3Min = &z.Z3
			row.Z4Min = &z.Z4
			row.Z5Min = &z.Z5
		}
		sessionRows = append(sessionRows, row)
	}

	if len(sessionRows) > 0 {
		inserted, err := p.db.InsertSessions(ctx, sessionRows)
		if err != nil {
			return result, fmt.Errorf("inserting sessions: %w", err)
		}
		result.SessionsInserted = inserted
	}

	var testRows []models.PowerTestRow
	for _, t := range payload.Data.PowerTests {
		result.PowerTestsReceived++
		if t.Date.IsZero() || t.PowerWatts <= 0 || t.DurationSec <= 0 {
			p.log.Warn("skipping invalid power test",
				"duration_sec", t.DurationSec, "power_watts", t.PowerWatts)
			continue
		}
		if !isCanonicalDuration(t.DurationSec) {
			p.log.Warn("skipping power test at non-canonical duration", "duration_sec", t.DurationSec)
			continue
		}
		testRows = append(testRows, models.PowerTestRow{
			AthleteID:   athleteID,
			Date:        t.Date.Time,
			DurationSec: t.DurationSec,
			PowerWatts:  t.PowerWatts,
			Source:      "trainer",
		})
	}

	if len(testRows) > 0 {
		inserted, err := p.db.InsertPowerTests(ctx, testRows)
		if err != nil {
			return result, fmt.Errorf("inserting power tests: %w", err)
		}
		result.PowerTestsInserted = inserted
	}

	return result, nil
}

func isCanonicalDuration(sec int) bool {
	for _, d := range metabolic.CanonicalDurations {
		if d == sec {
			return true
		}
	}
	return false
}
