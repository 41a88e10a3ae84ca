package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/veloform/veloform/internal/models"
)

// InsertSnapshot stores a new metabolic model snapshot. When markCurrent is
// set the previous current snapshot is demoted in the same transaction, so
// at most one snapshot per athlete is ever current.
func (db *DB) InsertSnapshot(ctx context.Context, row *models.SnapshotRow, markCurrent bool) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if markCurrent {
		if _, err := tx.Exec(ctx,
			`UPDATE model_snapshots SET is_current = FALSE WHERE athlete_id = $1 AND is_current`,
			row.AthleteID); err != nil {
			return fmt.Errorf("demoting current snapshot: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO model_snapshots (id, athlete_id, created_at, is_current, critical_power_watts, vlamax, fitted, model_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, row.ID, row.AthleteID, row.CreatedAt, markCurrent,
		row.CriticalPowerWatts, row.VLamax, row.Fitted, row.ModelJSON)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	row.IsCurrent = markCurrent

	return tx.Commit(ctx)
}

// PromoteSnapshot atomically makes one stored snapshot the athlete's
// current model, demoting whichever was current before.
func (db *DB) PromoteSnapshot(ctx context.Context, athleteID int, snapshotID uuid.UUID) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning promote tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE model_snapshots SET is_current = FALSE WHERE athlete_id = $1 AND is_current`,
		athleteID); err != nil {
		return fmt.Errorf("demoting current snapshot: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE model_snapshots SET is_current = TRUE WHERE id = $1 AND athlete_id = $2`,
		snapshotID, athleteID)
	if err != nil {
		return fmt.Errorf("promoting snapshot %s: %w", snapshotID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// GetCurrentSnapshot returns the athlete's current model snapshot, or
// ErrNotFound when none has been promoted yet.
func (db *DB) GetCurrentSnapshot(ctx context.Context, athleteID int) (*models.SnapshotRow, error) {
	var r models.SnapshotRow
	err := db.Pool.QueryRow(ctx, `
		SELECT id, athlete_id, created_at, is_current, critical_power_watts, vlamax, fitted, model_json
		FROM model_snapshots
		WHERE athlete_id = $1 AND is_current
	`, athleteID).Scan(&r.ID, &r.AthleteID, &r.CreatedAt, &r.IsCurrent,
		&r.CriticalPowerWatts, &r.VLamax, &r.Fitted, &r.ModelJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying current snapshot: %w", err)
	}
	return &r, nil
}

// ListSnapshots returns an athlete's snapshot history, newest first.
func (db *DB) ListSnapshots(ctx context.Context, athleteID int, limit int) ([]models.SnapshotRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id, athlete_id, created_at, is_current, critical_power_watts, vlamax, fitted, model_json
		FROM model_snapshots
		WHERE athlete_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, athleteID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var result []models.SnapshotRow
	for rows.Next() {
		var r models.SnapshotRow
		if err := rows.Scan(&r.ID, &r.AthleteID, &r.CreatedAt, &r.IsCurrent,
			&r.CriticalPowerWatts, &r.VLamax, &r.Fitted, &r.ModelJSON); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// NewSnapshotRow builds a SnapshotRow shell with a fresh ID and timestamp.
func NewSnapshotRow(athleteID int, createdAt time.Time) *models.SnapshotRow {
	return &models.SnapshotRow{
		ID:        uuid.New(),
		AthleteID: athleteID,
		CreatedAt: createdAt,
	}
}
