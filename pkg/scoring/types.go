// Package scoring implements the MicroScan risk fusion engine. It turns a set
// of extracted signals and an AI vision assessment into a bounded composite
// score, a risk tier, an explanation and a list of recommended actions.
package scoring

import "github.com/microscan/microscan/pkg/signal"

// Variant names the kind of risk being assessed.
type Variant string

const (
	VariantAlgae        Variant = "algae"
	VariantMicroplastic Variant = "microplastic"
)

// RiskResult is the complete output of scoring one request.
// Immutable once computed.
type RiskResult struct {
	Variant       Variant                 `json:"variant"`
	Score         int                     `json:"risk_score"` // 0-100
	Tier          Tier                    `json:"risk_level"`
	Drivers       []Driver                `json:"drivers"`
	PrimaryAction string                  `json:"action"`
	Actions       []string                `json:"management_actions"`
	Details       string                  `json:"details"`
	Breakdown     []Contribution          `json:"breakdown"`
	Signals       map[signal.Name]float64 `json:"signals,omitempty"`
	Projection    *Projection             `json:"projection,omitempty"`
}

// Points returns the points contributed by the rule with the given key, or
// zero if it did not contribute.
func (r *RiskResult) Points(key string) float64 {
	for _, c := range r.Breakdown {
		if c.Key == key {
			return c.Points
		}
	}
	return 0
}

// Contribution is the output of a single scoring rule.
type Contribution struct {
	Key     string      `json:"key"`  // machine key: "water_temperature"
	Name    string      `json:"name"` // human name: "Water temperature"
	Signal  signal.Name `json:"signal,omitempty"`
	Value   *float64    `json:"value,omitempty"` // measured value, when the signal was present
	Points  float64     `json:"points"`
	Driver  string      `json:"driver,omitempty"`  // explanation; empty for silent bands
	Matched string      `json:"matched,omitempty"` // keyword that triggered a text rule
}

// Driver is a human-readable reason paired with the points behind it.
type Driver struct {
	Label  string  `json:"label"`
	Points float64 `json:"points"`
}

// Projection holds the simulated auxiliary indicators and forward trajectory
// produced for the algae variant.
type Projection struct {
	Satellite   Satellite       `json:"satellite"`
	Nutrients   Nutrients       `json:"nutrients"`
	Forecast    []ForecastPoint `json:"forecast"`
	TrendFactor float64         `json:"trend_factor"`
}

// Satellite is a remote-sensing proxy bundle.
type Satellite struct {
	AnalysisDate       string  `json:"analysis_date"`
	NDVIAnomaly        float64 `json:"ndvi_anomaly"`
	ChlorophyllA       float64 `json:"chlorophyll_a"` // µg/L
	CyanobacteriaIndex string  `json:"cyanobacteria_index"`
}

// Nutrients is a nutrient-load proxy bundle, both values in mg/L.
type Nutrients struct {
	Nitrogen   float64 `json:"nitrogen"`
	Phosphorus float64 `json:"phosphorus"`
}

// ForecastPoint is one step of the forward risk trajectory.
type ForecastPoint struct {
	Day  string `json:"day"`
	Risk int    `json:"risk"`
}
