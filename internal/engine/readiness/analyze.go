package readiness

import "fmt"

// Result is the full daily readiness assessment for one snapshot.
type Result struct {
	ReadinessScore int     `json:"readiness_score"`
	StrainScore    float64 `json:"strain_score"`
	RecoveryScore  int     `json:"recovery_score"`
	StressScore    int     `json:"stress_score"`

	HRVStatus     string `json:"hrv_status"`
	SleepStatus   string `json:"sleep_status"`
	FatigueStatus string `json:"fatigue_status"`

	RecommendedIntensity string `json:"recommended_intensity"`
	LoadAdjustmentPct    int    `json:"load_adjustment_pct"`
	Message              string `json:"message"`
}

// Analyze runs all four scores over one snapshot and derives the training
// recommendation. Strain is estimated from yesterday's training stress.
func Analyze(s *Snapshot) *Result {
	r := &Result{
		ReadinessScore: Readiness(s),
		RecoveryScore:  Recovery(s),
		StressScore:    Stress(s),
		HRVStatus:      hrvStatus(s),
		SleepStatus:    sleepStatus(s),
		FatigueStatus:  fatigueStatus(s),
	}
	r.StrainScore = Strain(SessionEffort{TSS: s.YesterdayTSS})

	switch {
	case r.ReadinessScore >= 80:
		r.RecommendedIntensity = "high"
		r.LoadAdjustmentPct = 10
		r.Message = "Ready for a hard session."
	case r.ReadinessScore >= 60:
		r.RecommendedIntensity = "moderate"
		r.LoadAdjustmentPct = 0
		r.Message = "Train as planned."
	case r.ReadinessScore >= 40:
		r.RecommendedIntensity = "low"
		r.LoadAdjustmentPct = -20
		r.Message = "Keep intensity low today."
	default:
		r.RecommendedIntensity = "rest"
		r.LoadAdjustmentPct = -50
		r.Message = "Rest or active recovery only."
	}

	if r.StressScore > 70 {
		r.LoadAdjustmentPct -= 15
		r.Message += " Elevated physiological stress detected."
	}
	if r.RecoveryScore < 50 {
		r.LoadAdjustmentPct -= 10
		r.Message += " Recovery is incomplete."
	}

	if r.LoadAdjustmentPct < -50 {
		r.LoadAdjustmentPct = -50
	}
	if r.LoadAdjustmentPct > 15 {
		r.LoadAdjustmentPct = 15
	}

	return r
}

func hrvStatus(s *Snapshot) string {
	ratio, ok := s.hrvRatio()
	if !ok {
		if s.HRV != nil {
			return "no baseline"
		}
		return "unknown"
	}
	switch {
	case ratio < 0.8:
		return "suppressed"
	case ratio < 0.9:
		return "below baseline"
	case ratio <= 1.1:
		return "normal"
	case ratio <= 1.2:
		return "above baseline"
	default:
		return "elevated"
	}
}

func sleepStatus(s *Snapshot) string {
	ratio, ok := s.sleepRatio()
	if !ok {
		return "unknown"
	}
	switch {
	case ratio >= 0.9:
		return "good"
	case ratio >= 0.8:
		return "adequate"
	case ratio >= 0.7:
		return "short"
	default:
		return "poor"
	}
}

func fatigueStatus(s *Snapshot) string {
	tsb, ok := s.balance()
	if !ok {
		return "unknown"
	}
	switch {
	case tsb >= 10:
		return "fresh"
	case tsb >= 0:
		return "neutral"
	case tsb >= -10:
		return "productive"
	case tsb >= -20:
		return "tired"
	default:
		return "overreached"
	}
}

// DescribeScore renders a readiness score as a short display string.
func DescribeScore(score int) string {
	switch {
	case score >= 80:
		return fmt.Sprintf("%d - primed", score)
	case score >= 60:
		return fmt.Sprintf("%d - ready", score)
	case score >= 40:
		return fmt.Sprintf("%d - compromised", score)
	default:
		return fmt.Sprintf("%d - run down", score)
	}
}
