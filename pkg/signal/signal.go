// Package signal extracts typed numeric signals from loosely-typed sources:
// labelled sensor readings ("23.4 deg C"), optical measurements and the
// structured-but-untrusted output of the AI vision service.
//
// Extraction never fails loudly. A reading that is missing or cannot be
// parsed is simply absent from the resulting Set.
package signal

import "math"

// Name identifies a single measurable quantity feeding a risk score.
type Name string

const (
	Temperature     Name = "temperature"      // °C
	PH              Name = "ph"               // pH units
	Turbidity       Name = "turbidity"        // NTU
	DissolvedOxygen Name = "dissolved_oxygen" // mg/L
	Conductance     Name = "conductance"      // µS/cm, recorded but not scored

	OpticalTurbidity Name = "optical_turbidity" // 0-100 score from the camera pipeline
	EdgeDensity      Name = "edge_density"      // fraction of edge pixels, 0-1
	LabVariance      Name = "lab_variance"      // variance across CIELAB channels

	AIRisk       Name = "ai_risk"       // 0-100 from the vision service
	AIConfidence Name = "ai_confidence" // 0-100 from the vision service
)

// Set maps signal names to values. Names absent from the set are legal and
// mean "no contribution". The zero value is an empty, usable set.
type Set struct {
	order  []Name
	values map[Name]float64
}

// NewSet returns an empty Set.
func NewSet() Set {
	return Set{values: make(map[Name]float64)}
}

// Put records a value. NaN and infinite values are treated as absent.
// Re-putting a name keeps its original position.
func (s *Set) Put(name Name, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	if s.values == nil {
		s.values = make(map[Name]float64)
	}
	if _, ok := s.values[name]; !ok {
		s.order = append(s.order, name)
	}
	s.values[name] = v
}

// Get returns the value for name and whether it is present.
func (s Set) Get(name Name) (float64, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Has reports whether name is present.
func (s Set) Has(name Name) bool {
	_, ok := s.values[name]
	return ok
}

// Len returns the number of present signals.
func (s Set) Len() int { return len(s.order) }

// Names returns present signal names in insertion order.
func (s Set) Names() []Name {
	out := make([]Name, len(s.order))
	copy(out, s.order)
	return out
}

// Merge returns a new Set holding s followed by every signal of other.
// Values from other win on conflict.
func (s Set) Merge(other Set) Set {
	out := NewSet()
	for _, n := range s.order {
		out.Put(n, s.values[n])
	}
	for _, n := range other.order {
		out.Put(n, other.values[n])
	}
	return out
}

// Map returns the set as a plain map, mainly for JSON output.
func (s Set) Map() map[Name]float64 {
	out := make(map[Name]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// OpticalSignals builds the signal set for the camera-side measurements of the
// microplastic variant.
func OpticalSignals(turbidityScore, edgeDensity, labVariance float64) Set {
	s := NewSet()
	s.Put(OpticalTurbidity, turbidityScore)
	s.Put(EdgeDensity, edgeDensity)
	s.Put(LabVariance, labVariance)
	return s
}
