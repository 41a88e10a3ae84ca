package readiness

import "math"

// Recovery computes the 0-100 recovery score from a base of 60.
func Recovery(s *Snapshot) int {
	score := 60.0

	if ratio, ok := s.hrvRatio(); ok {
		switch {
		case ratio >= 1.0:
			score += 20
		case ratio >= 0.9:
			score += 10
		case ratio < 0.8:
			score -= 15
		}
	}

	if s.SleepScore != nil {
		score += (*s.SleepScore - 70) * 0.3
	}

	if s.SleepDeepMin != nil && s.SleepDurationMin != nil && *s.SleepDurationMin > 0 {
		deepFrac := *s.SleepDeepMin / *s.SleepDurationMin
		switch {
		case deepFrac >= 0.20:
			score += 10
		case deepFrac < 0.10:
			score -= 10
		}
	}

	if s.SpO2 != nil {
		switch {
		case *s.SpO2 >= 97:
			score += 5
		case *s.SpO2 < 94:
			score -= 10
		}
	}

	if s.YesterdayTSS != nil {
		switch {
		case *s.YesterdayTSS > 150:
			score -= 15
		case *s.YesterdayTSS > 100:
			score -= 8
		case *s.YesterdayTSS < 50:
			score += 5
		}
	}

	return int(math.Round(clamp(score, 0, 100)))
}

// Stress computes the 0-100 physiological stress score from a base of 30.
// Higher is worse.
func Stress(s *Snapshot) int {
	score := 30.0

	if ratio, ok := s.hrvRatio(); ok {
		switch {
		case ratio < 0.8:
			score += 20
		case ratio < 0.9:
			score += 10
		case ratio > 1.1:
			score += 5
		}
	}

	if diff, ok := s.restingHRDiff(); ok {
		switch {
		case diff >= 5:
			score += 15
		case diff >= 3:
			score += 8
		}
	}

	if s.RespiratoryRate != nil {
		switch {
		case *s.RespiratoryRate > 16:
			score += 10
		case *s.RespiratoryRate < 12:
			score -= 5
		}
	}

	if s.StressLevel != nil {
		score += float64(*s.StressLevel-5) * 5
	}

	if ratio, ok := s.sleepRatio(); ok && ratio < 0.75 {
		score += 15
	}

	return int(math.Round(clamp(score, 0, 100)))
}
