package readiness

import (
	"math"
	"sort"
)

// ZoneMinutes is time in each power zone for one session, in minutes.
type ZoneMinutes struct {
	Z1 float64 `json:"z1"`
	Z2 float64 `json:"z2"`
	Z3 float64 `json:"z3"`
	Z4 float64 `json:"z4"`
	Z5 float64 `json:"z5"`
}

// SessionEffort is the load information available for one session when
// estimating strain. All fields are optional.
type SessionEffort struct {
	TSS             *float64     `json:"tss,omitempty"`
	Zones           *ZoneMinutes `json:"zones,omitempty"`
	DurationMin     float64      `json:"duration_min"`
	IntensityFactor *float64     `json:"intensity_factor,omitempty"`
}

// Strain maps a single session to a 0-21 strain scale. A TSS of 100 (one
// hour at threshold) lands around 14; zone-weighted time refines the
// estimate when available.
func Strain(e SessionEffort) float64 {
	var strain float64
	var haveTSS bool

	if e.TSS != nil {
		tss := *e.TSS
		if math.IsNaN(tss) || math.IsInf(tss, 0) || tss < 0 {
			tss = 0
		}
		strain = math.Min(21, tss/100*14)
		haveTSS = true
	}

	if e.Zones != nil {
		z := e.Zones
		zoneStrain := z.Z1*0.02 + z.Z2*0.05 + z.Z3*0.12 + z.Z4*0.25 + z.Z5*0.5
		if haveTSS {
			strain = strain*0.7 + zoneStrain*0.3
		} else {
			strain = zoneStrain
		}
	}

	// Long easy sessions accumulate strain that neither estimate captures.
	// The bonus never lifts a session past 15.
	if e.DurationMin > 120 && strain < 15 {
		bonus := (e.DurationMin - 120) / 60
		strain = math.Min(15, strain+bonus)
	}

	if e.IntensityFactor != nil && *e.IntensityFactor > 0.9 {
		strain *= 1 + (*e.IntensityFactor-0.9)*2
	}

	return roundTenth(clamp(strain, 0, 21))
}

// DailyStrain combines multiple same-day session strains with diminishing
// returns: the largest counts in full, each subsequent one at 0.5/index.
func DailyStrain(strains []float64) float64 {
	if len(strains) == 0 {
		return 0
	}
	sorted := make([]float64, len(strains))
	copy(sorted, strains)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	total := sorted[0]
	for i, s := range sorted[1:] {
		total += s * 0.5 / float64(i+1)
	}
	return roundTenth(clamp(total, 0, 21))
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
