package scoring

import "github.com/microscan/microscan/pkg/signal"

// AlgaeRules returns the harmful algal bloom rule set, evaluated in the
// order temperature, pH, turbidity, dissolved oxygen, visual.
func AlgaeRules(w Weights) []Rule {
	return []Rule{
		&LadderRule{
			RuleKey:  "water_temperature",
			RuleName: "Water temperature",
			Signal:   signal.Temperature,
			Bands: []Band{
				{Compare: Above, Threshold: w.TempHighThreshold, Points: w.TempHighPoints, Driver: "High Water Temp ({value}°C)"},
				{Compare: Above, Threshold: w.TempWarmThreshold, Points: w.TempWarmPoints, Driver: "Warm Water ({value}°C)"},
			},
		},
		&LadderRule{
			RuleKey:  "ph",
			RuleName: "pH",
			Signal:   signal.PH,
			Bands: []Band{
				{Compare: Above, Threshold: w.PHVeryHighThreshold, Points: w.PHVeryHighPoints, Driver: "Very High pH ({value})"},
				{Compare: Above, Threshold: w.PHElevatedThreshold, Points: w.PHElevatedPoints, Driver: "Elevated pH ({value})"},
			},
		},
		&LadderRule{
			RuleKey:  "turbidity",
			RuleName: "Turbidity",
			Signal:   signal.Turbidity,
			Bands: []Band{
				{Compare: Above, Threshold: w.TurbidityHighThreshold, Points: w.TurbidityHighPoints, Driver: "High Turbidity"},
				{Compare: Above, Threshold: w.TurbidityModerateThreshold, Points: w.TurbidityModeratePoints},
			},
		},
		&LadderRule{
			RuleKey:  "dissolved_oxygen",
			RuleName: "Dissolved oxygen",
			Signal:   signal.DissolvedOxygen,
			Bands: []Band{
				{Compare: Below, Threshold: w.HypoxiaThreshold, Points: w.HypoxiaPoints, Driver: "Hypoxia Risk (DO {value} mg/L)"},
				{Compare: Above, Threshold: w.SupersaturationThreshold, Points: w.SupersaturationPoints, Driver: "Supersaturation (DO {value} mg/L)"},
			},
		},
		&VisualRule{
			Tiers: []KeywordTier{
				{Keywords: w.HighRiskKeywords, Points: w.VisualHighPoints, Driver: "Visual Confirmation (Scum/Algae)"},
				{Keywords: w.ModerateRiskKeywords, Points: w.VisualModeratePoints, Driver: "Visual: Green Coloration"},
			},
		},
	}
}

// OpticalRules returns the microplastic rule set: three camera-side optical
// measurements followed by the AI expert's own risk estimate.
func OpticalRules(w Weights) []Rule {
	return []Rule{
		&LadderRule{
			RuleKey:  "turbidity_contribution",
			RuleName: "Optical turbidity",
			Signal:   signal.OpticalTurbidity,
			Bands: []Band{
				{Compare: Above, Threshold: w.OpticalTurbidityHeavyThreshold, Points: w.OpticalTurbidityHeavyPoints, Driver: "Heavy Optical Turbidity ({value})"},
				{Compare: Above, Threshold: w.OpticalTurbidityThreshold, Points: w.OpticalTurbidityPoints, Driver: "Optical Turbidity ({value})"},
			},
		},
		&LadderRule{
			RuleKey:  "edge_contribution",
			RuleName: "Particle edge density",
			Signal:   signal.EdgeDensity,
			Bands: []Band{
				{Compare: Above, Threshold: w.EdgeDensityDenseThreshold, Points: w.EdgeDensityDensePoints, Driver: "Dense Particle Edges ({value})"},
				{Compare: Above, Threshold: w.EdgeDensityThreshold, Points: w.EdgeDensityPoints, Driver: "Particle Edges ({value})"},
			},
		},
		&LadderRule{
			RuleKey:  "lab_variance_contribution",
			RuleName: "Color variance",
			Signal:   signal.LabVariance,
			Bands: []Band{
				{Compare: Above, Threshold: w.LabVarianceHighThreshold, Points: w.LabVarianceHighPoints, Driver: "High Color Variance ({value})"},
				{Compare: Above, Threshold: w.LabVarianceThreshold, Points: w.LabVariancePoints},
			},
		},
		&ExpertRule{
			Weight: w.ExpertWeight,
			Floor:  w.ExpertConfidenceFloor,
		},
	}
}
