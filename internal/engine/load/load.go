// Package load turns a training-session history into daily chronic/acute
// load and form (CTL/ATL/TSB) series with window summary statistics. Pure
// and deterministic: the "today" cutoff is a parameter, never the clock.
package load

import (
	"math"
	"time"
)

const (
	// Exponential time constants, in days.
	chronicTimeConstant = 42.0
	acuteTimeConstant   = 7.0
)

// Session is one completed training session. Stress is a TSS-like value.
type Session struct {
	Date           time.Time `json:"date"`
	TrainingStress float64   `json:"training_stress"`
	DurationMin    float64   `json:"duration_min"`
}

// DailyPoint is one calendar day of the load series.
type DailyPoint struct {
	Date        time.Time `json:"date"`
	ChronicLoad float64   `json:"chronic_load"`
	AcuteLoad   float64   `json:"acute_load"`
	Balance     float64   `json:"balance"`
	DailyStress float64   `json:"daily_training_stress"`
}

// Summary aggregates the requested window. AvgTSS is the mean over calendar
// days in the window, rest days included.
type Summary struct {
	TotalTSS   float64 `json:"total_tss"`
	AvgTSS     float64 `json:"avg_tss"`
	PeakTSS    float64 `json:"peak_tss"`
	TotalHours float64 `json:"total_hours"`
	RampRate   float64 `json:"ramp_rate"`
}

// Series is the computed window: one point per calendar day, ascending.
type Series struct {
	Days    []DailyPoint `json:"days"`
	Summary Summary      `json:"summary"`
}

// Compute walks every calendar day from the earliest session through today,
// decaying CTL/ATL on rest days, and returns the trailing windowDays of the
// series. Sessions may arrive unordered; same-day stress is summed; negative
// or non-finite stress counts as zero. An empty history yields a zeroed
// Series, not an error.
func Compute(sessions []Session, windowDays int, today time.Time) *Series {
	if windowDays <= 0 {
		windowDays = 7
	}
	today = midnight(today)

	if len(sessions) == 0 {
		return &Series{}
	}

	type dayLoad struct {
		stress      float64
		durationMin float64
	}
	byDay := make(map[time.Time]dayLoad)
	start := today
	for _, s := range sessions {
		d := midnight(s.Date)
		if d.After(today) {
			continue
		}
		if d.Before(start) {
			start = d
		}
		dl := byDay[d]
		dl.stress += sanitize(s.TrainingStress)
		dl.durationMin += sanitize(s.DurationMin)
		byDay[d] = dl
	}

	chronicAlpha := 1 - math.Exp(-1/chronicTimeConstant)
	acuteAlpha := 1 - math.Exp(-1/acuteTimeConstant)

	var all []DailyPoint
	var ctl, atl float64
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		stress := byDay[d].stress
		ctl += (stress - ctl) * chronicAlpha
		atl += (stress - atl) * acuteAlpha
		all = append(all, DailyPoint{
			Date:        d,
			ChronicLoad: ctl,
			AcuteLoad:   atl,
			Balance:     ctl - atl,
			DailyStress: stress,
		})
	}

	// Trim to the requested window.
	if len(all) > windowDays {
		all = all[len(all)-windowDays:]
	}

	s := &Series{Days: all}
	if len(all) == 0 {
		return s
	}

	for _, p := range all {
		s.Summary.TotalTSS += p.DailyStress
		if p.DailyStress > s.Summary.PeakTSS {
			s.Summary.PeakTSS = p.DailyStress
		}
		s.Summary.TotalHours += byDay[p.Date].durationMin / 60
	}
	s.Summary.AvgTSS = s.Summary.TotalTSS / float64(len(all))

	// CTL points gained per week across the window.
	weeks := float64(windowDays) / 7
	s.Summary.RampRate = (all[len(all)-1].ChronicLoad - all[0].ChronicLoad) / weeks

	return s
}

// FormDescription maps a TSB value to a display label.
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detrained)"
	case tsb > 10:
		return "Fresh and ready to race"
	case tsb > 0:
		return "Neutral - good for training"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sanitize normalizes user-entered garbage to zero so a single bad record
// cannot poison the series.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
