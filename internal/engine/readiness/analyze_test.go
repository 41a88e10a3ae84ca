package readiness

import (
	"strings"
	"testing"
)

// TestAnalyzeRecommendationLadder verifies the readiness→intensity mapping.
func TestAnalyzeRecommendationLadder(t *testing.T) {
	tests := []struct {
		name          string
		snapshot      *Snapshot
		wantIntensity string
		wantAdjust    int
	}{
		{
			name: "high",
			snapshot: &Snapshot{
				HRV: fp(60), HRVBaseline: fp(60),
				SleepDurationMin: fp(500),
				Feeling:          sp("great"),
			},
			wantIntensity: "high",
			wantAdjust:    10,
		},
		{
			name:          "moderate on empty snapshot",
			snapshot:      &Snapshot{},
			wantIntensity: "moderate",
			wantAdjust:    0,
		},
		{
			name: "low",
			snapshot: &Snapshot{
				SleepDurationMin: fp(350),
				Feeling:          sp("tired"),
				StressLevel:      ip(7),
			},
			wantIntensity: "low",
			wantAdjust:    -20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Analyze(tt.snapshot)
			if r.RecommendedIntensity != tt.wantIntensity {
				t.Errorf("intensity = %q, want %q (readiness %d)", r.RecommendedIntensity, tt.wantIntensity, r.ReadinessScore)
			}
			if r.LoadAdjustmentPct != tt.wantAdjust {
				t.Errorf("adjustment = %d, want %d", r.LoadAdjustmentPct, tt.wantAdjust)
			}
		})
	}
}

// TestAnalyzeWarnings verifies high stress and poor recovery subtract from
// the adjustment, append warnings, and the clamp holds at -50.
func TestAnalyzeWarnings(t *testing.T) {
	wrecked := &Snapshot{
		HRV: fp(35), HRVBaseline: fp(60),
		RestingHR: fp(60), RestingHRBaseline: fp(50),
		SleepDurationMin: fp(250),
		SleepScore:       fp(35),
		RespiratoryRate:  fp(19),
		SpO2:             fp(92),
		YesterdayTSS:     fp(220),
		Feeling:          sp("bad"),
		StressLevel:      ip(9),
	}

	r := Analyze(wrecked)
	if r.RecommendedIntensity != "rest" {
		t.Errorf("intensity = %q, want rest (readiness %d)", r.RecommendedIntensity, r.ReadinessScore)
	}
	if r.LoadAdjustmentPct != -50 {
		t.Errorf("adjustment = %d, want clamped to -50", r.LoadAdjustmentPct)
	}
	if !strings.Contains(r.Message, "stress") {
		t.Errorf("message %q missing stress warning", r.Message)
	}
	if !strings.Contains(r.Message, "Recovery") {
		t.Errorf("message %q missing recovery warning", r.Message)
	}
}

// TestAnalyzeStatuses verifies the classification fields.
func TestAnalyzeStatuses(t *testing.T) {
	s := &Snapshot{
		HRV: fp(57), HRVBaseline: fp(60),
		SleepDurationMin: fp(450),
		ChronicLoad:      fp(60), AcuteLoad: fp(66),
	}
	r := Analyze(s)
	if r.HRVStatus != "normal" {
		t.Errorf("hrv_status = %q, want normal", r.HRVStatus)
	}
	if r.SleepStatus != "good" {
		t.Errorf("sleep_status = %q, want good", r.SleepStatus)
	}
	if r.FatigueStatus != "productive" {
		t.Errorf("fatigue_status = %q, want productive", r.FatigueStatus)
	}

	none := Analyze(&Snapshot{})
	if none.HRVStatus != "unknown" || none.SleepStatus != "unknown" || none.FatigueStatus != "unknown" {
		t.Errorf("empty snapshot statuses = %q/%q/%q, want unknown", none.HRVStatus, none.SleepStatus, none.FatigueStatus)
	}
}

// TestAnalyzeStrainFromYesterday verifies the strain score comes from
// yesterday's stress.
func TestAnalyzeStrainFromYesterday(t *testing.T) {
	r := Analyze(&Snapshot{YesterdayTSS: fp(100)})
	if r.StrainScore != 14 {
		t.Errorf("strain = %.1f, want 14", r.StrainScore)
	}
}

// TestDescribeScore verifies the display bands.
func TestDescribeScore(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{92, "92 - primed"},
		{80, "80 - primed"},
		{65, "65 - ready"},
		{45, "45 - compromised"},
		{20, "20 - run down"},
	}
	for _, tt := range tests {
		if got := DescribeScore(tt.score); got != tt.want {
			t.Errorf("DescribeScore(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
