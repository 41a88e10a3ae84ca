// Package metabolic fits a critical-power model from sparse power-duration
// test data and expands it into training zones with substrate consumption.
// All functions are pure: same inputs, same outputs, no I/O.
package metabolic

import (
	"errors"
	"math"
)

// ErrInsufficientData is returned when neither enough test points nor a
// manual critical power are supplied. Callers should surface it as an
// actionable message, not a failure.
var ErrInsufficientData = errors.New("metabolic: need at least 5 test points or a manual critical power")

// CanonicalDurations are the test durations (seconds) of the power-duration
// protocol, shortest to longest.
var CanonicalDurations = []int{5, 10, 20, 30, 60, 120, 180, 360, 480, 720, 1200}

const (
	// DefaultGrossEfficiency is the fraction of metabolic power converted
	// to mechanical power. User-overridable per athlete.
	DefaultGrossEfficiency = 0.23

	// DefaultTauLacticSec is the glycolytic depletion time constant. The
	// source material disagrees with itself (180s vs 45s in different
	// modules), so it is a parameter rather than a literal.
	DefaultTauLacticSec = 180.0

	tauAlacticSec = 10.0

	// Joules of alactic capacity per watt of short-burst surplus above CP.
	alacticSurplusFactor = 15.0
	// Joules of lactic capacity per watt of mid-duration surplus above CP.
	lacticSurplusFactor = 180.0

	// Fallback capacities when too few points exist in a duration band,
	// expressed as multiples of CP.
	alacticFallbackFactor = 25.0
	lacticFallbackFactor  = 180.0

	minCP       = 100.0
	minWAlactic = 1000.0
	minWLactic  = 5000.0

	defaultVLamax = 0.5
)

// PowerDurationPoint is one sample of the maximal-power-vs-duration curve.
// A nil PowerWatts means the duration was not tested.
type PowerDurationPoint struct {
	DurationSec int      `json:"duration_sec"`
	PowerWatts  *float64 `json:"power_watts,omitempty"`
}

// FitInput carries everything Fit needs. Zero-valued optional fields mean
// "not provided"; GrossEfficiency and TauLacticSec fall back to the
// package defaults when zero.
type FitInput struct {
	Points []PowerDurationPoint

	WeightKg   float64
	BodyFatPct float64

	// Manual overrides. ManualCP > 0 enables manual mode when fewer than
	// five points are populated.
	ManualCP     float64
	ManualVLamax float64

	GrossEfficiency float64
	TauLacticSec    float64
}

// EnergySplit is the relative contribution of each energy system to total
// work capacity, in rounded percent.
type EnergySplit struct {
	AerobicPct int `json:"aerobic_pct"`
	AlacticPct int `json:"alactic_pct"`
	LacticPct  int `json:"lactic_pct"`
}

// Model is an immutable metabolic profile derived from one Fit call.
type Model struct {
	CriticalPowerWatts  float64     `json:"critical_power_watts"`
	WAlacticJoules      float64     `json:"w_alactic_joules"`
	TauAlacticSec       float64     `json:"tau_alactic_seconds"`
	WLacticJoules       float64     `json:"w_lactic_joules"`
	TauLacticSec        float64     `json:"tau_lactic_seconds"`
	PeakGlycolyticWatts float64     `json:"peak_glycolytic_power_watts"`
	VLamax              float64     `json:"vlamax"`
	FatMaxWatts         float64     `json:"fat_max_watts"`
	LT1Watts            float64     `json:"lt1_watts"`
	LT2Watts            float64     `json:"lt2_watts"`
	LeanBodyMassKg      float64     `json:"lean_body_mass_kg"`
	Split               EnergySplit `json:"energy_system_split"`
	Fitted              bool        `json:"fitted"`
}

// Fit derives a Model from test data and body composition. Mode selection:
// five or more populated points fit the curve; fewer with a manual CP use
// manual mode; otherwise ErrInsufficientData.
func Fit(in FitInput) (*Model, error) {
	ge := in.GrossEfficiency
	if ge <= 0 {
		ge = DefaultGrossEfficiency
	}
	tauLactic := in.TauLacticSec
	if tauLactic <= 0 {
		tauLactic = DefaultTauLacticSec
	}

	points := populated(in.Points)
	lbm := in.WeightKg * (1 - in.BodyFatPct/100)

	m := &Model{
		TauAlacticSec:  tauAlacticSec,
		TauLacticSec:   tauLactic,
		LeanBodyMassKg: lbm,
	}

	switch {
	case len(points) >= 5:
		fitCurve(m, points, lbm)
		m.Fitted = true
	case in.ManualCP > 0:
		m.CriticalPowerWatts = in.ManualCP
		m.WAlacticJoules = in.ManualCP * alacticFallbackFactor
		m.WLacticJoules = in.ManualCP * lacticFallbackFactor
		m.PeakGlycolyticWatts = m.WLacticJoules / tauLactic
		if in.ManualVLamax > 0 {
			m.VLamax = clamp(in.ManualVLamax, 0.2, 1.5)
		} else {
			m.VLamax = defaultVLamax
		}
	default:
		return nil, ErrInsufficientData
	}

	deriveMarkers(m)
	return m, nil
}

// fitCurve estimates CP and the two anaerobic capacities from banded
// averages of the test points.
func fitCurve(m *Model, points []sample, lbm float64) {
	cp := estimateCP(points)

	// Alactic band: 5-30s. Surplus of the best short effort over CP.
	if short := band(points, 5, 30); len(short) >= 2 {
		best := short[0].power
		for _, p := range short[1:] {
			if p.power > best {
				best = p.power
			}
		}
		m.WAlacticJoules = (best - cp) * alacticSurplusFactor
	} else {
		m.WAlacticJoules = cp * alacticFallbackFactor
	}

	// Lactic band: 60-360s. Surplus of the band average over CP.
	if mid := band(points, 60, 360); len(mid) >= 2 {
		m.WLacticJoules = (mean(mid) - cp) * lacticSurplusFactor
	} else {
		m.WLacticJoules = cp * lacticFallbackFactor
	}

	m.CriticalPowerWatts = math.Max(cp, minCP)
	m.WAlacticJoules = math.Max(m.WAlacticJoules, minWAlactic)
	m.WLacticJoules = math.Max(m.WLacticJoules, minWLactic)

	m.PeakGlycolyticWatts = m.WLacticJoules / m.TauLacticSec

	vlamax := 0.0
	if lbm > 0 {
		vlamax = m.PeakGlycolyticWatts / (lbm * 0.5)
	}
	m.VLamax = clamp(vlamax, 0.2, 1.5)
}

// estimateCP averages the long-duration points, falling back to a
// discounted mid-duration minimum. A 20-minute point caps the estimate:
// CP can never exceed 95% of it.
func estimateCP(points []sample) float64 {
	long := band(points, 720, 1<<30)
	var cp float64
	if len(long) >= 2 {
		cp = mean(long)
	} else {
		// Fallback: discount the weakest mid-duration effort. Long points
		// are left to the 20-minute cap below so a single 1200s test does
		// not drag the estimate down twice.
		mid := band(points, 360, 719)
		if len(mid) == 0 {
			mid = band(points, 360, 1<<30)
		}
		if len(mid) > 0 {
			low := mid[0].power
			for _, p := range mid[1:] {
				if p.power < low {
					low = p.power
				}
			}
			cp = 0.9 * low
		}
	}

	for _, p := range points {
		if p.durationSec == 1200 {
			cp = math.Min(cp, 0.95*p.power)
		}
	}
	return cp
}

func deriveMarkers(m *Model) {
	cp := m.CriticalPowerWatts

	m.FatMaxWatts = cp * 0.70
	m.LT1Watts = cp * lt1Fraction(m.VLamax)
	m.LT2Watts = cp

	// Energy split over one hour of aerobic work plus both anaerobic stores.
	total := m.WAlacticJoules + m.WLacticJoules + cp*3600
	if total > 0 {
		m.Split = EnergySplit{
			AerobicPct: int(math.Round(cp * 3600 / total * 100)),
			AlacticPct: int(math.Round(m.WAlacticJoules / total * 100)),
			LacticPct:  int(math.Round(m.WLacticJoules / total * 100)),
		}
	}
}

// lt1Fraction maps VLaMax to the LT1 fraction of CP: a higher glycolytic
// rate pushes the first threshold down. Linear between the anchor points.
func lt1Fraction(vlamax float64) float64 {
	switch {
	case vlamax >= 0.6:
		return 0.72
	case vlamax <= 0.4:
		return 0.82
	default:
		return 0.82 + (vlamax-0.4)/(0.6-0.4)*(0.72-0.82)
	}
}

// ClassifyVLamax returns a display label for a VLaMax value.
func ClassifyVLamax(v float64) string {
	switch {
	case v < 0.40:
		return "pure endurance"
	case v < 0.60:
		return "strong endurance"
	case v < 0.80:
		return "all-round"
	case v < 1.00:
		return "anaerobic"
	default:
		return "sprint/lactic"
	}
}

// sample is a populated, sanitized test point.
type sample struct {
	durationSec int
	power       float64
}

// populated filters to points with a finite positive power value.
// User-entered garbage is dropped here rather than propagated.
func populated(points []PowerDurationPoint) []sample {
	var out []sample
	for _, p := range points {
		if p.PowerWatts == nil || p.DurationSec <= 0 {
			continue
		}
		w := *p.PowerWatts
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			continue
		}
		out = append(out, sample{durationSec: p.DurationSec, power: w})
	}
	return out
}

func band(points []sample, minSec, maxSec int) []sample {
	var out []sample
	for _, p := range points {
		if p.durationSec >= minSec && p.durationSec <= maxSec {
			out = append(out, p)
		}
	}
	return out
}

func mean(points []sample) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.power
	}
	return sum / float64(len(points))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
