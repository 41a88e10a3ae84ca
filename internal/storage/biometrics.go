package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/veloform/veloform/internal/models"
)

// InsertBiometrics batch-inserts biometric rows. Returns the number
// actually inserted (duplicates skipped via ON CONFLICT DO NOTHING).
func (db *DB) InsertBiometrics(ctx context.Context, rows []models.BiometricRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO biometrics (time, athlete_id, metric_name, source, units, qty)
VALUES `
	args := make([]any, 0, len(rows)*6)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		args = append(args, r.Time, r.AthleteID, r.MetricName, r.Source, r.Units, r.Qty)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting biometrics: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryBiometrics retrieves one metric's rows in a time range.
func (db *DB) QueryBiometrics(ctx context.Context, athleteID int, metricName string, start, end time.Time) ([]models.BiometricRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT time, athlete_id, metric_name, source, units, qty
		FROM biometrics
		WHERE athlete_id = $1 AND metric_name = $2 AND time >= $3 AND time < $4
		ORDER BY time ASC
	`, athleteID, metricName, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying biometrics: %w", err)
	}
	defer rows.Close()

	return scanBiometricRows(rows)
}

// GetLatestBiometrics returns the most recent value of each metric.
func (db *DB) GetLatestBiometrics(ctx context.Context, athleteID int) ([]models.BiometricRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT ON (metric_name) time, athlete_id, metric_name, source, units, qty
		FROM biometrics
		WHERE athlete_id = $1
		ORDER BY metric_name, time DESC
	`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying latest biometrics: %w", err)
	}
	defer rows.Close()

	return scanBiometricRows(rows)
}

// DayValues returns each metric's latest value on one calendar day (UTC).
// This is the raw material for a readiness snapshot.
func (db *DB) DayValues(ctx context.Context, athleteID int, day time.Time) (map[string]float64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT ON (metric_name) metric_name, qty
		FROM biometrics
		WHERE athlete_id = $1 AND time >= $2 AND time < $3
		ORDER BY metric_name, time DESC
	`, athleteID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("querying day values: %w", err)
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var name string
		var qty float64
		if err := rows.Scan(&name, &qty); err != nil {
			return nil, fmt.Errorf("scanning day value: %w", err)
		}
		result[name] = qty
	}
	return result, rows.Err()
}

// MetricBaseline returns the mean of a metric over the trailing window
// ending the day before `day`. Readiness compares today's HRV and resting
// HR against this personal baseline. Returns ok=false with no data.
func (db *DB) MetricBaseline(ctx context.Context, athleteID int, metricName string, day time.Time, windowDays int) (float64, bool, error) {
	if windowDays <= 0 {
		windowDays = 42
	}
	end := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -windowDays)

	var avg *float64
	err := db.Pool.QueryRow(ctx, `
		SELECT AVG(qty) FROM biometrics
		WHERE athlete_id = $1 AND metric_name = $2 AND time >= $3 AND time < $4
	`, athleteID, metricName, start, end).Scan(&avg)
	if err != nil {
		return 0, false, fmt.Errorf("querying %s baseline: %w", metricName, err)
	}
	if avg == nil {
		return 0, false, nil
	}
	return *avg, true, nil
}

// BiometricSeries is an aggregated daily series for one metric.
type BiometricSeries struct {
	Time  time.Time `json:"time"`
	Avg   *float64  `json:"avg"`
	Min   *float64  `json:"min"`
	Max   *float64  `json:"max"`
	Count int64     `json:"count"`
}

// GetBiometricSeries returns a metric bucketed per day over a range.
func (db *DB) GetBiometricSeries(ctx context.Context, athleteID int, metricName string, start, end time.Time) ([]BiometricSeries, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT date_trunc('day', time) AS bucket,
		       AVG(qty), MIN(qty), MAX(qty), COUNT(*)
		FROM biometrics
		WHERE athlete_id = $1 AND metric_name = $2 AND time >= $3 AND time < $4
		GROUP BY bucket
		ORDER BY bucket ASC
	`, athleteID, metricName, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying biometric series: %w", err)
	}
	defer rows.Close()

	var result []BiometricSeries
	for rows.Next() {
		var p BiometricSeries
		if err := rows.Scan(&p.Time, &p.Avg, &p.Min, &p.Max, &p.Count); err != nil {
			return nil, fmt.Errorf("scanning biometric series: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func scanBiometricRows(rows pgx.Rows) ([]models.BiometricRow, error) {
	var result []models.BiometricRow
	for rows.Next() {
		var r models.BiometricRow
		if err := rows.Scan(&r.Time, &r.AthleteID, &r.MetricName, &r.Source, &r.Units, &r.Qty); err != nil {
			return nil, fmt.Errorf("scanning biometric row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
