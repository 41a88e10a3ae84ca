package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncTime handles the timestamp formats sync clients send: full datetime
// with offset, RFC3339, or date-only for daily aggregates.
type SyncTime struct {
	time.Time
}

const (
	SyncTimeLayout     = "2006-01-02 15:04:05 -0700"
	SyncDateOnlyLayout = "2006-01-02"
)

func (t *SyncTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return t.Parse(s)
}

func (t SyncTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(SyncTimeLayout))
}

// Parse parses a sync time string, trying full datetime, RFC3339, then
// date-only.
func (t *SyncTime) Parse(s string) error {
	parsed, err := time.Parse(SyncTimeLayout, s)
	if err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err2 := time.Parse(time.RFC3339, s)
	if err2 == nil {
		t.Time = parsed
		return nil
	}
	parsed, err3 := time.Parse(SyncDateOnlyLayout, s)
	if err3 == nil {
		t.Time = parsed
		return nil
	}
	return fmt.Errorf("cannot parse sync time %q: %w", s, err)
}

// ParseSyncTime parses a sync time string into a time.Time.
func ParseSyncTime(s string) (time.Time, error) {
	var t SyncTime
	if err := t.Parse(s); err != nil {
		return time.Time{}, err
	}
	return t.Time, nil
}

// WearablePayload is the top-level JSON structure a wearable sync client
// posts: named biometric metrics with daily data points.
type WearablePayload struct {
	Data WearableData `json:"data"`
}

// WearableData contains the metric arrays.
type WearableData struct {
	Metrics []WearableMetric `json:"metrics"`
}

// WearableMetric is one named metric with its data points.
type WearableMetric struct {
	Name  string              `json:"name"`
	Units string              `json:"units"`
	Data  []WearableDataPoint `json:"data"`
}

// WearableDataPoint is one timestamped quantity.
type WearableDataPoint struct {
	Date SyncTime `json:"date"`
	Qty  float64  `json:"qty"`
}

// TrainerPayload is the top-level JSON structure a training app posts:
// completed sessions and power-duration test efforts.
type TrainerPayload struct {
	Data TrainerData `json:"data"`
}

// TrainerData contains the session and test arrays.
type TrainerData struct {
	Sessions   []TrainerSession   `json:"sessions"`
	PowerTests []TrainerPowerTest `json:"power_tests"`
}

// TrainerSession is one completed training session.
type TrainerSession struct {
	Date            SyncTime          `json:"date"`
	Name            string            `json:"name"`
	DurationMin     float64           `json:"duration_min"`
	TrainingStress  float64           `json:"tss"`
	IntensityFactor *float64          `json:"intensity_factor,omitempty"`
	ZoneMinutes     *SessionZoneSplit `json:"zone_minutes,omitempty"`
}

// SessionZoneSplit is per-zone time in minutes for one session.
type SessionZoneSplit struct {
	Z1 float64 `json:"z1"`
	Z2 float64 `json:"z2"`
	Z3 float64 `json:"z3"`
	Z4 float64 `json:"z4"`
	Z5 float64 `json:"z5"`
}

// TrainerPowerTest is one maximal effort at a canonical test duration.
type TrainerPowerTest struct {
	Date        SyncTime `json:"date"`
	DurationSec int      `json:"duration_sec"`
	PowerWatts  float64  `json:"power_watts"`
}
