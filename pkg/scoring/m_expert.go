package scoring

import (
	"fmt"
	"math"

	"github.com/microscan/microscan/pkg/signal"
)

// ExpertRule folds the vision service's own numeric risk into the composite
// score, discounted by its stated confidence:
//
//	points = risk * Weight * (Floor + (1-Floor) * confidence/100)
//
// A degraded assessment scores zero risk and so contributes nothing.
type ExpertRule struct {
	Weight float64 // share of the AI risk carried at full confidence
	Floor  float64 // fraction of Weight kept at zero confidence
}

func (r *ExpertRule) Key() string  { return "ai_expert" }
func (r *ExpertRule) Name() string { return "AI expert assessment" }

func (r *ExpertRule) Evaluate(in Input) Contribution {
	c := Contribution{
		Key:    r.Key(),
		Name:   r.Name(),
		Signal: signal.AIRisk,
	}
	if in.Assessment == nil || in.Assessment.RiskScore == nil {
		return c
	}

	risk := bound(*in.Assessment.RiskScore, 0, 100)
	conf := bound(signal.Float64(in.Assessment.Confidence, 0), 0, 100)
	c.Value = &risk

	factor := r.Floor + (1-r.Floor)*conf/100
	c.Points = math.Round(risk*r.Weight*factor*10) / 10
	if c.Points > 0 {
		c.Driver = fmt.Sprintf("AI Expert Assessment (risk %s, confidence %s%%)",
			signal.FormatValue(risk), signal.FormatValue(conf))
	}
	return c
}

func bound(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
