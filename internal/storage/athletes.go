package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/veloform/veloform/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// GetOrCreateAthlete finds or creates an athlete by login. New athletes get
// the engine defaults; display name refreshes on each call.
func (db *DB) GetOrCreateAthlete(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO athletes (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET display_name = COALESCE(NULLIF($2, ''), athletes.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting athlete %s: %w", login, err)
	}
	return id, nil
}

// GetAthlete returns one athlete's profile.
func (db *DB) GetAthlete(ctx context.Context, athleteID int) (*models.AthleteRow, error) {
	var a models.AthleteRow
	err := db.Pool.QueryRow(ctx, `
		SELECT id, login, display_name, weight_kg, body_fat_pct,
		       manual_cp, manual_vlamax, gross_efficiency, sleep_target_min
		FROM athletes WHERE id = $1
	`, athleteID).Scan(&a.ID, &a.Login, &a.DisplayName, &a.WeightKg, &a.BodyFatPct,
		&a.ManualCP, &a.ManualVLamax, &a.GrossEfficiency, &a.SleepTargetMin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying athlete %d: %w", athleteID, err)
	}
	return &a, nil
}

// UpdateAthleteProfile stores body composition, manual overrides and engine
// preferences for one athlete.
func (db *DB) UpdateAthleteProfile(ctx context.Context, a *models.AthleteRow) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE athletes SET
			weight_kg = $2, body_fat_pct = $3,
			manual_cp = $4, manual_vlamax = $5,
			gross_efficiency = $6, sleep_target_min = $7
		WHERE id = $1
	`, a.ID, a.WeightKg, a.BodyFatPct, a.ManualCP, a.ManualVLamax,
		a.GrossEfficiency, a.SleepTargetMin)
	if err != nil {
		return fmt.Errorf("updating athlete %d: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAthletes returns all athletes ordered by login.
func (db *DB) ListAthletes(ctx context.Context) ([]models.AthleteRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, login, display_name, weight_kg, body_fat_pct,
		       manual_cp, manual_vlamax, gross_efficiency, sleep_target_min
		FROM athletes ORDER BY login
	`)
	if err != nil {
		return nil, fmt.Errorf("querying athletes: %w", err)
	}
	defer rows.Close()

	var result []models.AthleteRow
	for rows.Next() {
		var a models.AthleteRow
		if err := rows.Scan(&a.ID, &a.Login, &a.DisplayName, &a.WeightKg, &a.BodyFatPct,
			&a.ManualCP, &a.ManualVLamax, &a.GrossEfficiency, &a.SleepTargetMin); err != nil {
			return nil, fmt.Errorf("scanning athlete: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
