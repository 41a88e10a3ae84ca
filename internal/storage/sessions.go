package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/veloform/veloform/internal/models"
)

// InsertSessions batch-inserts training sessions. Returns the number
// actually inserted (duplicates skipped via ON CONFLICT DO NOTHING).
func (db *DB) InsertSessions(ctx context.Context, rows []models.SessionRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO training_sessions (id, athlete_id, date, name, duration_min, training_stress, intensity_factor, z1_min, z2_min, z3_min, z4_min, z5_min, source)
VALUES `
	args := make([]any, 0, len(rows)*13)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 13
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13,
		))
		args = append(args, r.ID, r.AthleteID, r.Date, r.Name, r.DurationMin,
			r.TrainingStress, r.IntensityFactor, r.Z1Min, r.Z2Min, r.Z3Min, r.Z4Min, r.Z5Min, r.Source)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QuerySessions retrieves sessions in a time range, oldest first.
func (db *DB) QuerySessions(ctx context.Context, athleteID int, start, end time.Time) ([]models.SessionRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, athlete_id, date, name, duration_min, training_stress,
		       intensity_factor, z1_min, z2_min, z3_min, z4_min, z5_min, source
		FROM training_sessions
		WHERE athlete_id = $1 AND date >= $2 AND date < $3
		ORDER BY date ASC
	`, athleteID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	return scanSessionRows(rows)
}

// SessionHistory returns an athlete's full session history up to and
// including the cutoff day, oldest first. The load engine needs the whole
// history so decay starts from the true beginning.
func (db *DB) SessionHistory(ctx context.Context, athleteID int, until time.Time) ([]models.SessionRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, athlete_id, date, name, duration_min, training_stress,
		       intensity_factor, z1_min, z2_min, z3_min, z4_min, z5_min, source
		FROM training_sessions
		WHERE athlete_id = $1 AND date < $2
		ORDER BY date ASC
	`, athleteID, until)
	if err != nil {
		return nil, fmt.Errorf("querying session history: %w", err)
	}
	defer rows.Close()

	return scanSessionRows(rows)
}

// SessionsOnDay returns the sessions that started on one calendar day (UTC).
func (db *DB) SessionsOnDay(ctx context.Context, athleteID int, day time.Time) ([]models.SessionRow, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return db.QuerySessions(ctx, athleteID, start, start.AddDate(0, 0, 1))
}

func scanSessionRows(rows pgx.Rows) ([]models.SessionRow, error) {
	var result []models.SessionRow
	for rows.Next() {
		var r models.SessionRow
		if err := rows.Scan(&r.ID, &r.AthleteID, &r.Date, &r.Name, &r.DurationMin,
			&r.TrainingStress, &r.IntensityFactor,
			&r.Z1Min, &r.Z2Min, &r.Z3Min, &r.Z4Min, &r.Z5Min, &r.Source); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
