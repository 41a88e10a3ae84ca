// Package readiness scores daily recovery state from partial biometric
// snapshots. Every scoring function is total over the optional-field input:
// absent fields are skipped, never defaulted to a favorable or stressful
// extreme. The threshold ladders are ordered rule tables so each rule can
// be audited and tested on its own.
package readiness

import "math"

// DefaultSleepTargetMin is used when a snapshot has no personal target.
const DefaultSleepTargetMin = 480.0

// Snapshot is one day of biometrics plus yesterday's load and subjective
// feedback. All fields are optional; nil means "not measured".
type Snapshot struct {
	HRV         *float64 `json:"hrv_rmssd,omitempty"`
	HRVBaseline *float64 `json:"hrv_baseline,omitempty"`

	RestingHR         *float64 `json:"resting_hr,omitempty"`
	RestingHRBaseline *float64 `json:"resting_hr_baseline,omitempty"`

	SleepDurationMin *float64 `json:"sleep_duration_min,omitempty"`
	SleepTargetMin   *float64 `json:"sleep_target_min,omitempty"`
	SleepScore       *float64 `json:"sleep_score,omitempty"`
	SleepDeepMin     *float64 `json:"sleep_deep_min,omitempty"`

	RespiratoryRate *float64 `json:"respiratory_rate,omitempty"`
	SpO2            *float64 `json:"spo2,omitempty"`

	ChronicLoad  *float64 `json:"chronic_load,omitempty"`
	AcuteLoad    *float64 `json:"acute_load,omitempty"`
	YesterdayTSS *float64 `json:"yesterday_training_stress,omitempty"`

	Feeling     *string `json:"feeling,omitempty"` // great/good/ok/tired/bad
	Soreness    *int    `json:"soreness,omitempty"`
	StressLevel *int    `json:"stress_level,omitempty"` // 1-10
	Motivation  *int    `json:"motivation,omitempty"`
}

// hrvRatio returns HRV relative to baseline, if both are present.
func (s *Snapshot) hrvRatio() (float64, bool) {
	if s.HRV == nil || s.HRVBaseline == nil || *s.HRVBaseline <= 0 {
		return 0, false
	}
	return *s.HRV / *s.HRVBaseline, true
}

// restingHRDiff returns resting HR minus baseline, if both are present.
func (s *Snapshot) restingHRDiff() (float64, bool) {
	if s.RestingHR == nil || s.RestingHRBaseline == nil {
		return 0, false
	}
	return *s.RestingHR - *s.RestingHRBaseline, true
}

// sleepRatio returns sleep duration relative to target (default 480 min).
func (s *Snapshot) sleepRatio() (float64, bool) {
	if s.SleepDurationMin == nil {
		return 0, false
	}
	target := DefaultSleepTargetMin
	if s.SleepTargetMin != nil && *s.SleepTargetMin > 0 {
		target = *s.SleepTargetMin
	}
	return *s.SleepDurationMin / target, true
}

// balance returns TSB (chronic − acute), if both loads are present.
func (s *Snapshot) balance() (float64, bool) {
	if s.ChronicLoad == nil || s.AcuteLoad == nil {
		return 0, false
	}
	return *s.ChronicLoad - *s.AcuteLoad, true
}

// adjustment is one readiness rule: it reports a score delta and whether
// its input group was present at all.
type adjustment struct {
	name  string
	apply func(s *Snapshot) (float64, bool)
}

// readinessRules is the ordered adjustment table for Readiness. Each entry
// is one input group; the applied count drives the low-confidence
// regression below.
var readinessRules = []adjustment{
	{"hrv", hrvAdjustment},
	{"resting_hr", restingHRAdjustment},
	{"sleep_duration", sleepDurationAdjustment},
	{"sleep_score", sleepScoreAdjustment},
	{"training_balance", balanceAdjustment},
	{"feeling", feelingAdjustment},
	{"stress", stressAdjustment},
}

// Readiness computes the 0-100 readiness score from a base of 70. With
// fewer than three input groups present the result is regressed halfway
// back toward the base to reflect low confidence.
func Readiness(s *Snapshot) int {
	score := 70.0
	present := 0
	for _, rule := range readinessRules {
		if delta, ok := rule.apply(s); ok {
			score += delta
			present++
		}
	}
	if present < 3 {
		score = 70 + (score-70)*0.5
	}
	return int(math.Round(clamp(score, 0, 100)))
}

func hrvAdjustment(s *Snapshot) (float64, bool) {
	if ratio, ok := s.hrvRatio(); ok {
		switch {
		case ratio >= 0.9 && ratio <= 1.1:
			return 15, true
		case ratio >= 0.8 && ratio <= 1.2:
			return 5, true
		case ratio < 0.8:
			return -15, true
		default: // > 1.2
			return -5, true
		}
	}
	// No baseline yet: coarse absolute bands.
	if s.HRV != nil {
		switch {
		case *s.HRV >= 50 && *s.HRV <= 80:
			return 10, true
		case *s.HRV < 40:
			return -10, true
		default:
			return 0, true
		}
	}
	return 0, false
}

func restingHRAdjustment(s *Snapshot) (float64, bool) {
	diff, ok := s.restingHRDiff()
	if !ok {
		return 0, false
	}
	switch {
	case diff <= -3:
		return 10, true
	case diff <= 0:
		return 5, true
	case diff >= 5:
		return -10, true
	case diff >= 3:
		return -5, true
	default:
		return 0, true
	}
}

func sleepDurationAdjustment(s *Snapshot) (float64, bool) {
	ratio, ok := s.sleepRatio()
	if !ok {
		return 0, false
	}
	switch {
	case ratio >= 1.0:
		return 12, true
	case ratio >= 0.9:
		return 8, true
	case ratio >= 0.8:
		return 2, true
	case ratio < 0.7:
		return -15, true
	default: // 0.7-0.8
		return -8, true
	}
}

func sleepScoreAdjustment(s *Snapshot) (float64, bool) {
	if s.SleepScore == nil {
		return 0, false
	}
	switch {
	case *s.SleepScore >= 85:
		return 5, true
	case *s.SleepScore >= 70:
		return 2, true
	case *s.SleepScore < 50:
		return -8, true
	default:
		return 0, true
	}
}

func balanceAdjustment(s *Snapshot) (float64, bool) {
	tsb, ok := s.balance()
	if !ok {
		return 0, false
	}
	switch {
	case tsb >= 10:
		return 10, true
	case tsb >= 0:
		return 5, true
	case tsb >= -10:
		return 0, true
	case tsb >= -20:
		return -5, true
	default:
		return -15, true
	}
}

func feelingAdjustment(s *Snapshot) (float64, bool) {
	if s.Feeling == nil {
		return 0, false
	}
	switch *s.Feeling {
	case "great":
		return 10, true
	case "good":
		return 5, true
	case "ok":
		return 0, true
	case "tired":
		return -8, true
	case "bad":
		return -15, true
	default:
		return 0, false
	}
}

func stressAdjustment(s *Snapshot) (float64, bool) {
	if s.StressLevel == nil {
		return 0, false
	}
	level := *s.StressLevel
	switch {
	case level <= 3:
		return 5, true
	case level >= 7:
		return -10, true
	case level >= 5:
		return -3, true
	default:
		return 0, true
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
