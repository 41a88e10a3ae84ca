package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about one athlete's stored data.
type DataStats struct {
	TotalBiometricRows int64      `json:"total_biometric_rows"`
	TotalSessions      int64      `json:"total_sessions"`
	TotalPowerTests    int64      `json:"total_power_tests"`
	TotalSnapshots     int64      `json:"total_snapshots"`
	EarliestData       *time.Time `json:"earliest_data"`
	LatestData         *time.Time `json:"latest_data"`

	SessionsByName []SessionNameStat `json:"sessions_by_name"`
}

// SessionNameStat holds summary stats for one session name.
type SessionNameStat struct {
	Name        string  `json:"name"`
	Count       int64   `json:"count"`
	TotalHours  float64 `json:"total_hours"`
	TotalStress float64 `json:"total_stress"`
}

// GetDataStats returns aggregate statistics for an athlete's stored data.
func (db *DB) GetDataStats(ctx context.Context, athleteID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM biometrics WHERE athlete_id = $1`, athleteID,
	).Scan(&stats.TotalBiometricRows)
	if err != nil {
		return nil, fmt.Errorf("counting biometrics: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM training_sessions WHERE athlete_id = $1`, athleteID,
	).Scan(&stats.TotalSessions)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM power_tests WHERE athlete_id = $1`, athleteID,
	).Scan(&stats.TotalPowerTests)
	if err != nil {
		return nil, fmt.Errorf("counting power tests: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM model_snapshots WHERE athlete_id = $1`, athleteID,
	).Scan(&stats.TotalSnapshots)
	if err != nil {
		return nil, fmt.Errorf("counting snapshots: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT MIN(t), MAX(t) FROM (
			SELECT MIN(time) AS t FROM biometrics WHERE athlete_id = $1
			UNION ALL
			SELECT MIN(date) FROM training_sessions WHERE athlete_id = $1
			UNION ALL
			SELECT MAX(time) FROM biometrics WHERE athlete_id = $1
			UNION ALL
			SELECT MAX(date) FROM training_sessions WHERE athlete_id = $1
		) sub`, athleteID,
	).Scan(&stats.EarliestData, &stats.LatestData)
	if err != nil {
		return nil, fmt.Errorf("querying date range: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT name, COUNT(*), COALESCE(SUM(duration_min), 0) / 60, COALESCE(SUM(training_stress), 0)
		 FROM training_sessions
		 WHERE athlete_id = $1
		 GROUP BY name
		 ORDER BY COUNT(*) DESC`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions by name: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s SessionNameStat
		if err := rows.Scan(&s.Name, &s.Count, &s.TotalHours, &s.TotalStress); err != nil {
			return nil, fmt.Errorf("scanning session name stat: %w", err)
		}
		stats.SessionsByName = append(stats.SessionsByName, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
