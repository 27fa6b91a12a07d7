package scoring_test

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/microscan/microscan/pkg/scoring"
	"github.com/microscan/microscan/pkg/signal"
)

func waterQuality(t *testing.T, vals map[signal.Name]float64) signal.Set {
	t.Helper()
	s := signal.NewSet()
	for _, n := range []signal.Name{signal.Temperature, signal.PH, signal.Turbidity, signal.DissolvedOxygen} {
		if v, ok := vals[n]; ok {
			s.Put(n, v)
		}
	}
	return s
}

func visual(text string) *signal.Assessment {
	return &signal.Assessment{VisualAnalysis: text}
}

func scoreAlgae(t *testing.T, in scoring.Input) *scoring.RiskResult {
	t.Helper()
	result, err := scoring.NewAlgaeEngine(scoring.Defaults(), nil).Score(in)
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	return result
}

func TestAlgaeEngineWorstCaseClamps(t *testing.T) {
	in := scoring.Input{
		Signals: waterQuality(t, map[signal.Name]float64{
			signal.Temperature:     26,
			signal.PH:              9.2,
			signal.Turbidity:       60,
			signal.DissolvedOxygen: 3.5,
		}),
		Assessment: visual("Thick cyanobacteria mat along the shore"),
	}
	result := scoreAlgae(t, in)

	if result.Score != 100 {
		t.Errorf("expected clamped score 100, got %d", result.Score)
	}
	if result.Tier != scoring.TierCritical {
		t.Errorf("expected Critical, got %s", result.Tier)
	}

	want := []scoring.Driver{
		{Label: "High Water Temp (26°C)", Points: 30},
		{Label: "Very High pH (9.2)", Points: 25},
		{Label: "High Turbidity", Points: 20},
		{Label: "Hypoxia Risk (DO 3.5 mg/L)", Points: 20},
		{Label: "Visual Confirmation (Scum/Algae)", Points: 50},
	}
	if diff := cmp.Diff(want, result.Drivers); diff != "" {
		t.Errorf("drivers mismatch (-want +got):\n%s", diff)
	}
	if result.Details != "Analysis of 5 factors." {
		t.Errorf("unexpected details %q", result.Details)
	}
	if result.PrimaryAction != "Issue Public Advisory: No Contact/Swimming." {
		t.Errorf("unexpected primary action %q", result.PrimaryAction)
	}
}

func TestAlgaeEngineCalmWater(t *testing.T) {
	in := scoring.Input{
		Signals: waterQuality(t, map[signal.Name]float64{
			signal.Temperature:     18,
			signal.PH:              7.0,
			signal.Turbidity:       5,
			signal.DissolvedOxygen: 8.0,
		}),
		Assessment: visual("clear water"),
	}
	result := scoreAlgae(t, in)

	if result.Score != 0 {
		t.Errorf("expected score 0, got %d", result.Score)
	}
	if result.Tier != scoring.TierLow {
		t.Errorf("expected Low, got %s", result.Tier)
	}
	if len(result.Drivers) != 0 {
		t.Errorf("expected no drivers, got %v", result.Drivers)
	}
	if result.Drivers == nil {
		t.Error("expected an empty, non-nil driver list")
	}
	if result.PrimaryAction != scoring.PrimaryAction(scoring.VariantAlgae, scoring.TierLow) {
		t.Errorf("unexpected primary action %q", result.PrimaryAction)
	}
	if result.Details != "Analysis of 0 factors." {
		t.Errorf("unexpected details %q", result.Details)
	}
}

func TestAlgaeEngineWarmGreenWater(t *testing.T) {
	in := scoring.Input{
		Signals:    waterQuality(t, map[signal.Name]float64{signal.Temperature: 21}),
		Assessment: visual("murky green water near the inlet"),
	}
	result := scoreAlgae(t, in)

	if result.Score != 45 {
		t.Errorf("expected score 45, got %d", result.Score)
	}
	if result.Tier != scoring.TierHigh {
		t.Errorf("expected High, got %s", result.Tier)
	}
	if got := result.Points("water_temperature"); got != 15 {
		t.Errorf("expected 15 temperature points, got %v", got)
	}
	if got := result.Points("visual_indicators"); got != 30 {
		t.Errorf("expected 30 visual points, got %v", got)
	}
}

// The worked example for a visual-only bloom labels 50 as Moderate, but the
// tier breakpoints put 40 and up in High, so 50 is High.
func TestAlgaeEngineVisualOnly(t *testing.T) {
	result := scoreAlgae(t, scoring.Input{Assessment: visual("an algal bloom")})

	if result.Score != 50 {
		t.Errorf("expected score 50, got %d", result.Score)
	}
	if result.Tier != scoring.TierHigh {
		t.Errorf("expected High, got %s", result.Tier)
	}
	if len(result.Breakdown) != 1 || result.Breakdown[0].Matched != "algal" {
		t.Errorf("expected a single visual contribution matched on %q, got %+v", "algal", result.Breakdown)
	}
}

func TestAlgaeEngineSilentTurbidityBand(t *testing.T) {
	result := scoreAlgae(t, scoring.Input{
		Signals: waterQuality(t, map[signal.Name]float64{signal.Turbidity: 25}),
	})

	if result.Score != 10 {
		t.Errorf("expected score 10, got %d", result.Score)
	}
	if len(result.Drivers) != 0 {
		t.Errorf("expected no drivers for the moderate turbidity band, got %v", result.Drivers)
	}
	if len(result.Breakdown) != 1 || result.Breakdown[0].Key != "turbidity" {
		t.Errorf("expected turbidity in breakdown, got %+v", result.Breakdown)
	}
}

func TestAlgaeEngineBandBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		signal signal.Name
		value  float64
		key    string
		want   float64
	}{
		{"temp at warm threshold", signal.Temperature, 20, "water_temperature", 0},
		{"temp just above warm", signal.Temperature, 20.1, "water_temperature", 15},
		{"temp at high threshold", signal.Temperature, 25, "water_temperature", 15},
		{"ph at elevated threshold", signal.PH, 8.5, "ph", 0},
		{"ph at very high threshold", signal.PH, 9.0, "ph", 15},
		{"turbidity at high threshold", signal.Turbidity, 50, "turbidity", 10},
		{"do at hypoxia threshold", signal.DissolvedOxygen, 4.0, "dissolved_oxygen", 0},
		{"do below hypoxia", signal.DissolvedOxygen, 3.9, "dissolved_oxygen", 20},
		{"do supersaturated", signal.DissolvedOxygen, 12.5, "dissolved_oxygen", 10},
		{"zero temperature is a reading", signal.Temperature, 0, "water_temperature", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scoreAlgae(t, scoring.Input{
				Signals: waterQuality(t, map[signal.Name]float64{tt.signal: tt.value}),
			})
			if got := result.Points(tt.key); got != tt.want {
				t.Errorf("expected %v points, got %v", tt.want, got)
			}
		})
	}
}

func TestAlgaeEngineHighKeywordWinsOverModerate(t *testing.T) {
	result := scoreAlgae(t, scoring.Input{
		Assessment: &signal.Assessment{
			VisualAnalysis: "green water with moss",
			Reasoning:      "likely cyanobacteria",
		},
	})
	if got := result.Points("visual_indicators"); got != 50 {
		t.Errorf("expected high-tier visual points only, got %v", got)
	}
}

func TestAlgaeEngineNilAssessment(t *testing.T) {
	result := scoreAlgae(t, scoring.Input{
		Signals: waterQuality(t, map[signal.Name]float64{signal.Temperature: 30}),
	})
	if result.Score != 30 {
		t.Errorf("expected 30, got %d", result.Score)
	}
}

func TestEngineWithoutRules(t *testing.T) {
	_, err := scoring.NewEngine(scoring.VariantAlgae, nil).Score(scoring.Input{})
	if err == nil {
		t.Error("expected error for engine without rules")
	}
}

type fixedProjector struct {
	gotScore int
	calls    int
}

func (p *fixedProjector) Project(score int, _ signal.Set) *scoring.Projection {
	p.gotScore = score
	p.calls++
	return &scoring.Projection{TrendFactor: 1.05}
}

func TestEngineProjector(t *testing.T) {
	p := &fixedProjector{}
	engine := scoring.NewAlgaeEngine(scoring.Defaults(), p)

	result, err := engine.Score(scoring.Input{
		Signals: waterQuality(t, map[signal.Name]float64{signal.Temperature: 26}),
	})
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if p.calls != 1 || p.gotScore != 30 {
		t.Errorf("expected projector called once with 30, got %d calls with %d", p.calls, p.gotScore)
	}
	if result.Projection == nil || result.Projection.TrendFactor != 1.05 {
		t.Errorf("expected projection on result, got %+v", result.Projection)
	}
}

func TestOpticalEngine(t *testing.T) {
	engine := scoring.NewOpticalEngine(scoring.Defaults())

	tests := []struct {
		name       string
		signals    signal.Set
		assessment *signal.Assessment
		wantScore  int
		wantTier   scoring.Tier
		wantKeys   []string
	}{
		{
			name:      "clean sample",
			signals:   signal.OpticalSignals(10, 0.02, 120),
			wantScore: 0,
			wantTier:  scoring.TierLow,
			wantKeys:  []string{},
		},
		{
			name:      "heavy optical load",
			signals:   signal.OpticalSignals(75, 0.2, 900),
			wantScore: 45,
			wantTier:  scoring.TierHigh,
			wantKeys:  []string{"turbidity_contribution", "edge_contribution", "lab_variance_contribution"},
		},
		{
			name:    "expert at full confidence",
			signals: signal.OpticalSignals(35, 0.1, 500),
			assessment: &signal.Assessment{
				RiskScore:  floatPtr(80),
				Confidence: floatPtr(100),
			},
			// 10 + 8 + 5 + 80*0.6
			wantScore: 71,
			wantTier:  scoring.TierCritical,
			wantKeys:  []string{"turbidity_contribution", "edge_contribution", "lab_variance_contribution", "ai_expert"},
		},
		{
			name:    "expert at zero confidence keeps the floor",
			signals: signal.OpticalSignals(0, 0, 0),
			assessment: &signal.Assessment{
				RiskScore:  floatPtr(50),
				Confidence: floatPtr(0),
			},
			wantScore: 15,
			wantTier:  scoring.TierLow,
			wantKeys:  []string{"ai_expert"},
		},
		{
			name:       "degraded assessment contributes nothing",
			signals:    signal.OpticalSignals(0, 0, 0),
			assessment: ptrTo(signal.Degraded(nil)),
			wantScore:  0,
			wantTier:   scoring.TierLow,
			wantKeys:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Score(scoring.Input{Signals: tt.signals, Assessment: tt.assessment})
			if err != nil {
				t.Fatalf("Score() error: %v", err)
			}
			if result.Variant != scoring.VariantMicroplastic {
				t.Errorf("expected microplastic variant, got %s", result.Variant)
			}
			if result.Score != tt.wantScore {
				t.Errorf("expected score %d, got %d", tt.wantScore, result.Score)
			}
			if result.Tier != tt.wantTier {
				t.Errorf("expected tier %s, got %s", tt.wantTier, result.Tier)
			}
			keys := []string{}
			for _, c := range result.Breakdown {
				keys = append(keys, c.Key)
			}
			if diff := cmp.Diff(tt.wantKeys, keys); diff != "" {
				t.Errorf("breakdown keys mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpticalEngineProductActions(t *testing.T) {
	engine := scoring.NewOpticalEngine(scoring.Defaults())

	result, err := engine.Score(scoring.Input{
		Signals: signal.OpticalSignals(75, 0.2, 900),
		Assessment: &signal.Assessment{
			RiskScore: floatPtr(80),
			Mode:      "Product",
		},
	})
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if result.Tier != scoring.TierCritical {
		t.Fatalf("expected Critical, got %s", result.Tier)
	}
	if result.PrimaryAction != "Avoid consuming from this container or source." {
		t.Errorf("unexpected primary action %q", result.PrimaryAction)
	}
	if diff := cmp.Diff(scoring.ActionsFor(scoring.VariantMicroplastic, scoring.TierCritical), result.Actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	for _, a := range result.Actions {
		for _, water := range scoring.ActionsFor(scoring.VariantAlgae, scoring.TierCritical) {
			if a == water {
				t.Errorf("microplastic result carries water-body action %q", a)
			}
		}
	}
}

func TestEngineConcurrentScore(t *testing.T) {
	engine := scoring.NewAlgaeEngine(scoring.Defaults(), nil)
	in := scoring.Input{
		Signals:    waterQuality(t, map[signal.Name]float64{signal.Temperature: 26, signal.PH: 8.7}),
		Assessment: visual("bloom"),
	}

	var wg sync.WaitGroup
	scores := make([]int, 16)
	for i := range scores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := engine.Score(in)
			if err != nil {
				t.Errorf("Score() error: %v", err)
				return
			}
			scores[i] = r.Score
		}(i)
	}
	wg.Wait()

	for i, s := range scores {
		if s != 95 {
			t.Errorf("goroutine %d: expected 95, got %d", i, s)
		}
	}
}

func floatPtr(v float64) *float64 { return &v }

func ptrTo[T any](v T) *T { return &v }
