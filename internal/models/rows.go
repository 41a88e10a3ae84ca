package models

import (
	"time"

	"github.com/google/uuid"
)

// AthleteRow is a row of the athletes table: identity plus the body
// composition and engine preferences the modeling engines consume.
type AthleteRow struct {
	ID          int    `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`

	WeightKg   float64 `json:"weight_kg"`
	BodyFatPct float64 `json:"body_fat_pct"`

	// Manual fallbacks when too few test points exist. Nil means unset.
	ManualCP     *float64 `json:"manual_cp,omitempty"`
	ManualVLamax *float64 `json:"manual_vlamax,omitempty"`

	GrossEfficiency float64 `json:"gross_efficiency"`
	SleepTargetMin  float64 `json:"sleep_target_min"`
}

// SessionRow is a row of the training_sessions table.
type SessionRow struct {
	ID              uuid.UUID `json:"id"`
	AthleteID       int       `json:"athlete_id"`
	Date            time.Time `json:"date"`
	Name            string    `json:"name"`
	DurationMin     float64   `json:"duration_min"`
	TrainingStress  float64   `json:"training_stress"`
	IntensityFactor *float64  `json:"intensity_factor,omitempty"`
	Z1Min           *float64  `json:"z1_min,omitempty"`
	Z2Min           *float64  `json:"z2_min,omitempty"`
	Z3Min           *float64  `json:"z3_min,omitempty"`
	Z4Min           *float64  `json:"z4_min,omitempty"`
	Z5Min           *float64  `json:"z5_min,omitempty"`
	Source          string    `json:"source"`
}

// BiometricRow is a row of the biometrics table: one timestamped quantity
// for one named metric.
type BiometricRow struct {
	Time       time.Time `json:"time"`
	AthleteID  int       `json:"athlete_id"`
	MetricName string    `json:"metric_name"`
	Source     string    `json:"source"`
	Units      string    `json:"units"`
	Qty        float64   `json:"qty"`
}

// PowerTestRow is a row of the power_tests table: one maximal effort at a
// canonical duration. The latest effort per duration feeds the profiler.
type PowerTestRow struct {
	AthleteID   int       `json:"athlete_id"`
	Date        time.Time `json:"date"`
	DurationSec int       `json:"duration_sec"`
	PowerWatts  float64   `json:"power_watts"`
	Source      string    `json:"source"`
}

// SnapshotRow is a row of the model_snapshots table: one versioned
// metabolic profile. At most one row per athlete has IsCurrent set; the
// promote operation flips it transactionally.
type SnapshotRow struct {
	ID        uuid.UUID `json:"id"`
	AthleteID int       `json:"athlete_id"`
	CreatedAt time.Time `json:"created_at"`
	IsCurrent bool      `json:"is_current"`

	CriticalPowerWatts float64 `json:"critical_power_watts"`
	VLamax             float64 `json:"vlamax"`
	Fitted             bool    `json:"fitted"`

	// Full model, serialized as stored.
	ModelJSON []byte `json:"model,omitempty"`
}
