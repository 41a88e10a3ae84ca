package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/veloform/veloform/internal/models"
)

// InsertPowerTests batch-inserts power test efforts. Returns the number
// actually inserted.
func (db *DB) InsertPowerTests(ctx context.Context, rows []models.PowerTestRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO power_tests (athlete_id, date, duration_sec, power_watts, source)
VALUES `
	args := make([]any, 0, len(rows)*5)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5,
		))
		args = append(args, r.AthleteID, r.Date, r.DurationSec, r.PowerWatts, r.Source)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting power tests: %w", err)
	}
	return tag.RowsAffected(), nil
}

// LatestPowerCurve returns the most recent effort per canonical duration,
// the sparse curve the profiler fits.
func (db *DB) LatestPowerCurve(ctx context.Context, athleteID int) ([]models.PowerTestRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT ON (duration_sec) athlete_id, date, duration_sec, power_watts, source
		FROM power_tests
		WHERE athlete_id = $1
		ORDER BY duration_sec ASC, date DESC
	`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying power curve: %w", err)
	}
	defer rows.Close()

	var result []models.PowerTestRow
	for rows.Next() {
		var r models.PowerTestRow
		if err := rows.Scan(&r.AthleteID, &r.Date, &r.DurationSec, &r.PowerWatts, &r.Source); err != nil {
			return nil, fmt.Errorf("scanning power test: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// QueryPowerTests retrieves all test efforts in a time range.
func (db *DB) QueryPowerTests(ctx context.Context, athleteID int, start, end time.Time) ([]models.PowerTestRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT athlete_id, date, duration_sec, power_watts, source
		FROM power_tests
		WHERE athlete_id = $1 AND date >= $2 AND date < $3
		ORDER BY date ASC, duration_sec ASC
	`, athleteID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying power tests: %w", err)
	}
	defer rows.Close()

	var result []models.PowerTestRow
	for rows.Next() {
		var r models.PowerTestRow
		if err := rows.Scan(&r.AthleteID, &r.Date, &r.DurationSec, &r.PowerWatts, &r.Source); err != nil {
			return nil, fmt.Errorf("scanning power test: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
