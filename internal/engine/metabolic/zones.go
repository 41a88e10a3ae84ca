package metabolic

import "math"

// wattsToKcalPerHour converts mechanical watts to kcal/h (1 W = 0.86 kcal/h).
const wattsToKcalPerHour = 0.86

// zoneDef defines a zone by its %CP range and substrate oxidation split.
type zoneDef struct {
	id       string
	name     string
	pctMin   float64
	pctMax   float64
	cho, fat float64
	pro      float64
}

// zoneTable is the fixed 7-zone scheme. Ranges are percent of CP; substrate
// fractions shift from fat-dominant at the bottom to pure carbohydrate at
// the top.
var zoneTable = []zoneDef{
	{"z1", "Recovery", 0.40, 0.55, 0.25, 0.70, 0.05},
	{"z2", "Endurance", 0.70, 0.76, 0.60, 0.40, 0.00},
	{"z3", "Tempo", 0.80, 0.87, 0.70, 0.27, 0.03},
	{"z4", "Threshold", 0.98, 1.02, 0.90, 0.08, 0.02},
	{"z5", "VO2max", 1.06, 1.20, 0.95, 0.03, 0.02},
	{"z6", "Anaerobic", 1.21, 1.50, 1.00, 0.00, 0.00},
	{"z7", "Neuromuscular", 1.51, 3.00, 1.00, 0.00, 0.00},
}

// Zone is one training zone expanded against a Model, with hourly energy
// and substrate consumption at the zone midpoint. Display fields are
// rounded to integers; the computation itself runs at full precision.
type Zone struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	MinWatts int     `json:"min_watts"`
	MaxWatts int     `json:"max_watts"`
	PctCPMin float64 `json:"pct_cp_min"`
	PctCPMax float64 `json:"pct_cp_max"`

	CHOFrac float64 `json:"cho_frac"`
	FatFrac float64 `json:"fat_frac"`
	ProFrac float64 `json:"pro_frac"`

	KcalPerHour     int `json:"kcal_per_hour"`
	CHOGramsPerHour int `json:"cho_g_per_hour"`
	FatGramsPerHour int `json:"fat_g_per_hour"`
	ProGramsPerHour int `json:"pro_g_per_hour"`
}

// Marker is a single-power physiological reference point.
type Marker struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Watts float64 `json:"watts"`
}

// Zones expands a Model into the fixed zone table. grossEfficiency <= 0
// falls back to the default.
func Zones(m *Model, grossEfficiency float64) []Zone {
	if grossEfficiency <= 0 {
		grossEfficiency = DefaultGrossEfficiency
	}

	cp := m.CriticalPowerWatts
	zones := make([]Zone, 0, len(zoneTable))
	for _, d := range zoneTable {
		minW := cp * d.pctMin
		maxW := cp * d.pctMax
		midW := (minW + maxW) / 2

		kcal := midW / grossEfficiency * wattsToKcalPerHour
		z := Zone{
			ID:       d.id,
			Name:     d.name,
			MinWatts: int(math.Round(minW)),
			MaxWatts: int(math.Round(maxW)),
			PctCPMin: d.pctMin,
			PctCPMax: d.pctMax,
			CHOFrac:  d.cho,
			FatFrac:  d.fat,
			ProFrac:  d.pro,

			KcalPerHour:     int(math.Round(kcal)),
			CHOGramsPerHour: int(math.Round(kcal * d.cho / 4)),
			FatGramsPerHour: int(math.Round(kcal * d.fat / 9)),
			ProGramsPerHour: int(math.Round(kcal * d.pro / 4)),
		}
		zones = append(zones, z)
	}
	return zones
}

// Markers returns the FatMax/LT1/LT2 reference points of a Model.
func Markers(m *Model) []Marker {
	return []Marker{
		{ID: "fatmax", Name: "FatMax", Watts: m.FatMaxWatts},
		{ID: "lt1", Name: "LT1", Watts: m.LT1Watts},
		{ID: "lt2", Name: "LT2", Watts: m.LT2Watts},
	}
}
