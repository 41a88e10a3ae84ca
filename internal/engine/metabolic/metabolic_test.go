package metabolic

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func fw(v float64) *float64 { return &v }

// curve builds a point set from duration→watts pairs, leaving everything
// else untested.
func curve(points map[int]float64) []PowerDurationPoint {
	out := make([]PowerDurationPoint, 0, len(CanonicalDurations))
	for _, d := range CanonicalDurations {
		p := PowerDurationPoint{DurationSec: d}
		if w, ok := points[d]; ok {
			p.PowerWatts = fw(w)
		}
		out = append(out, p)
	}
	return out
}

// TestFitReferenceCurve verifies the worked example: a five-point curve with
// a 20-minute test caps CP at 95% of the 1200s power.
func TestFitReferenceCurve(t *testing.T) {
	m, err := Fit(FitInput{
		Points:     curve(map[int]float64{5: 910, 60: 520, 180: 380, 480: 310, 1200: 280}),
		WeightKg:   74,
		BodyFatPct: 18,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(m.CriticalPowerWatts-266) > 0.5 {
		t.Errorf("cp = %.1f, want ≈266 (95%% of 280)", m.CriticalPowerWatts)
	}
	if math.Abs(m.LeanBodyMassKg-60.68) > 0.01 {
		t.Errorf("lbm = %.2f, want 60.68", m.LeanBodyMassKg)
	}
	if !m.Fitted {
		t.Error("expected fitted mode")
	}

	// Only one short point → alactic falls back to cp×25.
	if math.Abs(m.WAlacticJoules-m.CriticalPowerWatts*25) > 0.5 {
		t.Errorf("w_alactic = %.0f, want cp×25", m.WAlacticJoules)
	}
	// Two mid points (520, 380) → (450−cp)×180.
	wantLactic := (450 - m.CriticalPowerWatts) * 180
	if math.Abs(m.WLacticJoules-wantLactic) > 0.5 {
		t.Errorf("w_lactic = %.0f, want %.0f", m.WLacticJoules, wantLactic)
	}
}

// TestFitLongAverage verifies that two points at 720s+ average directly into
// the CP estimate.
func TestFitLongAverage(t *testing.T) {
	m, err := Fit(FitInput{
		Points:     curve(map[int]float64{5: 900, 60: 500, 180: 400, 720: 300, 1200: 290}),
		WeightKg:   70,
		BodyFatPct: 15,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// avg(300, 290) = 295, capped at 0.95×290 = 275.5.
	if math.Abs(m.CriticalPowerWatts-275.5) > 0.1 {
		t.Errorf("cp = %.1f, want 275.5", m.CriticalPowerWatts)
	}
}

// TestFitInsufficientData verifies the failure mode: fewer than five points
// and no manual CP.
func TestFitInsufficientData(t *testing.T) {
	_, err := Fit(FitInput{
		Points:   curve(map[int]float64{60: 500, 180: 400}),
		WeightKg: 70,
	})
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

// TestFitManualMode verifies the manual-override path.
func TestFitManualMode(t *testing.T) {
	tests := []struct {
		name       string
		manualCP   float64
		manualVLa  float64
		wantVLamax float64
	}{
		{"with vlamax", 250, 0.7, 0.7},
		{"default vlamax", 250, 0, 0.5},
		{"vlamax clamped high", 250, 3.0, 1.5},
		{"vlamax clamped low", 250, 0.05, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Fit(FitInput{
				Points:       curve(map[int]float64{60: 500}),
				WeightKg:     70,
				BodyFatPct:   12,
				ManualCP:     tt.manualCP,
				ManualVLamax: tt.manualVLa,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.Fitted {
				t.Error("expected manual mode")
			}
			if m.CriticalPowerWatts != tt.manualCP {
				t.Errorf("cp = %.0f, want %.0f", m.CriticalPowerWatts, tt.manualCP)
			}
			if m.WAlacticJoules != tt.manualCP*25 {
				t.Errorf("w_alactic = %.0f, want %.0f", m.WAlacticJoules, tt.manualCP*25)
			}
			if m.WLacticJoules != tt.manualCP*180 {
				t.Errorf("w_lactic = %.0f, want %.0f", m.WLacticJoules, tt.manualCP*180)
			}
			if m.VLamax != tt.wantVLamax {
				t.Errorf("vlamax = %.2f, want %.2f", m.VLamax, tt.wantVLamax)
			}
		})
	}
}

// TestFitVLamaxClamped verifies VLaMax stays inside [0.2, 1.5] under extreme
// inputs in both directions.
func TestFitVLamaxClamped(t *testing.T) {
	// Huge mid-duration surplus → raw vlamax far above 1.5.
	high, err := Fit(FitInput{
		Points:     curve(map[int]float64{5: 1500, 60: 900, 180: 800, 480: 300, 1200: 250}),
		WeightKg:   60,
		BodyFatPct: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high.VLamax > 1.5 || high.VLamax < 0.2 {
		t.Errorf("vlamax = %.2f, want within [0.2, 1.5]", high.VLamax)
	}

	// Flat curve → tiny surplus, floored capacities, heavy athlete.
	low, err := Fit(FitInput{
		Points:     curve(map[int]float64{5: 310, 60: 305, 180: 302, 720: 300, 1200: 300}),
		WeightKg:   120,
		BodyFatPct: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if low.VLamax > 1.5 || low.VLamax < 0.2 {
		t.Errorf("vlamax = %.2f, want within [0.2, 1.5]", low.VLamax)
	}
}

// TestFitFloors verifies the capacity floors clamp upward.
func TestFitFloors(t *testing.T) {
	// Inverted curve: short power below CP would make capacities negative.
	m, err := Fit(FitInput{
		Points:     curve(map[int]float64{5: 200, 10: 200, 60: 210, 180: 210, 720: 300, 1200: 300}),
		WeightKg:   70,
		BodyFatPct: 15,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.WAlacticJoules < 1000 {
		t.Errorf("w_alactic = %.0f, want ≥ 1000", m.WAlacticJoules)
	}
	if m.WLacticJoules < 5000 {
		t.Errorf("w_lactic = %.0f, want ≥ 5000", m.WLacticJoules)
	}
	if m.CriticalPowerWatts < 100 {
		t.Errorf("cp = %.0f, want ≥ 100", m.CriticalPowerWatts)
	}
}

// TestFitIgnoresGarbagePoints verifies non-finite and non-positive powers are
// dropped instead of propagated.
func TestFitIgnoresGarbagePoints(t *testing.T) {
	pts := curve(map[int]float64{5: 900, 60: 500, 180: 400, 480: 320, 1200: 280})
	pts = append(pts,
		PowerDurationPoint{DurationSec: 30, PowerWatts: fw(math.NaN())},
		PowerDurationPoint{DurationSec: 120, PowerWatts: fw(math.Inf(1))},
		PowerDurationPoint{DurationSec: 360, PowerWatts: fw(-50)},
	)

	m, err := Fit(FitInput{Points: pts, WeightKg: 74, BodyFatPct: 18})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.IsNaN(m.CriticalPowerWatts) || m.CriticalPowerWatts <= 0 {
		t.Errorf("cp = %v, want positive finite", m.CriticalPowerWatts)
	}
}

// TestFitDeterministic verifies two runs on identical input are identical.
func TestFitDeterministic(t *testing.T) {
	in := FitInput{
		Points:     curve(map[int]float64{5: 910, 60: 520, 180: 380, 480: 310, 1200: 280}),
		WeightKg:   74,
		BodyFatPct: 18,
	}
	a, err := Fit(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Fit(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("models differ:\n%+v\n%+v", a, b)
	}
}

// TestLT1Fraction verifies the VLaMax→LT1 interpolation anchors and midpoint.
func TestLT1Fraction(t *testing.T) {
	tests := []struct {
		vlamax float64
		want   float64
	}{
		{0.3, 0.82},
		{0.4, 0.82},
		{0.5, 0.77},
		{0.6, 0.72},
		{1.2, 0.72},
	}

	for _, tt := range tests {
		got := lt1Fraction(tt.vlamax)
		if math.Abs(got-tt.want) > 0.001 {
			t.Errorf("lt1Fraction(%.2f) = %.3f, want %.3f", tt.vlamax, got, tt.want)
		}
	}
}

// TestClassifyVLamax verifies the display label ladder.
func TestClassifyVLamax(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0.3, "pure endurance"},
		{0.45, "strong endurance"},
		{0.7, "all-round"},
		{0.9, "anaerobic"},
		{1.2, "sprint/lactic"},
	}

	for _, tt := range tests {
		if got := ClassifyVLamax(tt.v); got != tt.want {
			t.Errorf("ClassifyVLamax(%.2f) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
