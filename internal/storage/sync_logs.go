package storage

import (
	"context"
	"fmt"
	"time"
)

// SyncLog records one ingest or bulk-import operation's outcome.
type SyncLog struct {
	ID                 int64     `json:"id"`
	AthleteID          int       `json:"athlete_id"`
	CreatedAt          time.Time `json:"created_at"`
	Source             string    `json:"source"`
	Status             string    `json:"status"`
	RowsReceived       int       `json:"rows_received"`
	RowsInserted       int64     `json:"rows_inserted"`
	SessionsInserted   int64     `json:"sessions_inserted"`
	PowerTestsInserted int64     `json:"power_tests_inserted"`
	DurationMs         *int      `json:"duration_ms"`
	ErrorMessage       *string   `json:"error_message"`
}

// InsertSyncLog creates a new sync log entry and returns its ID.
func (db *DB) InsertSyncLog(ctx context.Context, l SyncLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO sync_logs (athlete_id, source, status, rows_received, rows_inserted,
		 sessions_inserted, power_tests_inserted, duration_ms, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 RETURNING id`,
		l.AthleteID, l.Source, l.Status, l.RowsReceived, l.RowsInserted,
		l.SessionsInserted, l.PowerTestsInserted, l.DurationMs, l.ErrorMessage,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting sync log: %w", err)
	}
	return id, nil
}

// QuerySyncLogs returns the most recent sync logs for an athlete.
func (db *DB) QuerySyncLogs(ctx context.Context, athleteID, limit int) ([]SyncLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, athlete_id, created_at, source, status, rows_received, rows_inserted,
		 sessions_inserted, power_tests_inserted, duration_ms, error_message
		 FROM sync_logs
		 WHERE athlete_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		athleteID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync logs: %w", err)
	}
	defer rows.Close()

	var result []SyncLog
	for rows.Next() {
		var l SyncLog
		if err := rows.Scan(&l.ID, &l.AthleteID, &l.CreatedAt, &l.Source, &l.Status,
			&l.RowsReceived, &l.RowsInserted, &l.SessionsInserted, &l.PowerTestsInserted,
			&l.DurationMs, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning sync log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
