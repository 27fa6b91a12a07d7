package scoring

import (
	"fmt"
	"sort"
)

// Weights holds the thresholds and point values for every rule.
type Weights struct {
	// Water temperature (°C)
	TempHighThreshold float64
	TempHighPoints    float64
	TempWarmThreshold float64
	TempWarmPoints    float64

	// pH
	PHVeryHighThreshold float64
	PHVeryHighPoints    float64
	PHElevatedThreshold float64
	PHElevatedPoints    float64

	// Turbidity (NTU)
	TurbidityHighThreshold     float64
	TurbidityHighPoints        float64
	TurbidityModerateThreshold float64
	TurbidityModeratePoints    float64 // silent band, no driver

	// Dissolved oxygen (mg/L)
	HypoxiaThreshold         float64 // below
	HypoxiaPoints            float64
	SupersaturationThreshold float64 // above
	SupersaturationPoints    float64

	// Visual keyword taxonomy
	VisualHighPoints     float64
	VisualModeratePoints float64
	HighRiskKeywords     []string
	ModerateRiskKeywords []string

	// Optical measurements (microplastic variant)
	OpticalTurbidityHeavyThreshold float64
	OpticalTurbidityHeavyPoints    float64
	OpticalTurbidityThreshold      float64
	OpticalTurbidityPoints         float64
	EdgeDensityDenseThreshold      float64
	EdgeDensityDensePoints         float64
	EdgeDensityThreshold           float64
	EdgeDensityPoints              float64
	LabVarianceHighThreshold       float64
	LabVarianceHighPoints          float64
	LabVarianceThreshold           float64
	LabVariancePoints              float64 // silent band, no driver

	// AI expert
	ExpertWeight          float64
	ExpertConfidenceFloor float64
}

// Defaults returns the default scoring weights.
func Defaults() Weights {
	return Weights{
		TempHighThreshold: 25,
		TempHighPoints:    30,
		TempWarmThreshold: 20,
		TempWarmPoints:    15,

		PHVeryHighThreshold: 9.0,
		PHVeryHighPoints:    25,
		PHElevatedThreshold: 8.5,
		PHElevatedPoints:    15,

		TurbidityHighThreshold:     50,
		TurbidityHighPoints:        20,
		TurbidityModerateThreshold: 10,
		TurbidityModeratePoints:    10,

		HypoxiaThreshold:         4.0,
		HypoxiaPoints:            20,
		SupersaturationThreshold: 12.0,
		SupersaturationPoints:    10,

		VisualHighPoints:     50,
		VisualModeratePoints: 30,
		HighRiskKeywords:     []string{"algae", "algal", "green scum", "cyanobacteria", "blue-green", "bloom"},
		ModerateRiskKeywords: []string{"green water", "turbid green", "vegetation", "moss"},

		OpticalTurbidityHeavyThreshold: 60,
		OpticalTurbidityHeavyPoints:    20,
		OpticalTurbidityThreshold:      30,
		OpticalTurbidityPoints:         10,
		EdgeDensityDenseThreshold:      0.15,
		EdgeDensityDensePoints:         15,
		EdgeDensityThreshold:           0.08,
		EdgeDensityPoints:              8,
		LabVarianceHighThreshold:       800,
		LabVarianceHighPoints:          10,
		LabVarianceThreshold:           400,
		LabVariancePoints:              5,

		ExpertWeight:          0.6,
		ExpertConfidenceFloor: 0.5,
	}
}

func (w *Weights) fields() map[string]*float64 {
	return map[string]*float64{
		"temp_high_threshold":               &w.TempHighThreshold,
		"temp_high_points":                  &w.TempHighPoints,
		"temp_warm_threshold":               &w.TempWarmThreshold,
		"temp_warm_points":                  &w.TempWarmPoints,
		"ph_very_high_threshold":            &w.PHVeryHighThreshold,
		"ph_very_high_points":               &w.PHVeryHighPoints,
		"ph_elevated_threshold":             &w.PHElevatedThreshold,
		"ph_elevated_points":                &w.PHElevatedPoints,
		"turbidity_high_threshold":          &w.TurbidityHighThreshold,
		"turbidity_high_points":             &w.TurbidityHighPoints,
		"turbidity_moderate_threshold":      &w.TurbidityModerateThreshold,
		"turbidity_moderate_points":         &w.TurbidityModeratePoints,
		"hypoxia_threshold":                 &w.HypoxiaThreshold,
		"hypoxia_points":                    &w.HypoxiaPoints,
		"supersaturation_threshold":         &w.SupersaturationThreshold,
		"supersaturation_points":            &w.SupersaturationPoints,
		"visual_high_points":                &w.VisualHighPoints,
		"visual_moderate_points":            &w.VisualModeratePoints,
		"optical_turbidity_heavy_threshold": &w.OpticalTurbidityHeavyThreshold,
		"optical_turbidity_heavy_points":    &w.OpticalTurbidityHeavyPoints,
		"optical_turbidity_threshold":       &w.OpticalTurbidityThreshold,
		"optical_turbidity_points":          &w.OpticalTurbidityPoints,
		"edge_density_dense_threshold":      &w.EdgeDensityDenseThreshold,
		"edge_density_dense_points":         &w.EdgeDensityDensePoints,
		"edge_density_threshold":            &w.EdgeDensityThreshold,
		"edge_density_points":               &w.EdgeDensityPoints,
		"lab_variance_high_threshold":       &w.LabVarianceHighThreshold,
		"lab_variance_high_points":          &w.LabVarianceHighPoints,
		"lab_variance_threshold":            &w.LabVarianceThreshold,
		"lab_variance_points":               &w.LabVariancePoints,
		"expert_weight":                     &w.ExpertWeight,
		"expert_confidence_floor":           &w.ExpertConfidenceFloor,
	}
}

// Override applies named overrides, as read from configuration. Unknown keys
// are an error so that typos do not silently keep the default.
func (w *Weights) Override(overrides map[string]float64) error {
	fields := w.fields()
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		p, ok := fields[k]
		if !ok {
			return fmt.Errorf("unknown scoring weight %q", k)
		}
		*p = overrides[k]
	}
	if w.ExpertConfidenceFloor < 0 || w.ExpertConfidenceFloor > 1 {
		return fmt.Errorf("expert_confidence_floor must be within [0, 1], got %v", w.ExpertConfidenceFloor)
	}
	return nil
}
