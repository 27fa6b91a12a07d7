package scoring

import "github.com/microscan/microscan/pkg/signal"

// KeywordTier is one rank of a keyword taxonomy.
type KeywordTier struct {
	Keywords []string
	Points   float64
	Driver   string
}

// VisualRule classifies the vision service's free text against a ranked
// keyword taxonomy. Tiers are mutually exclusive: the first tier with a hit
// wins and lower tiers are not consulted.
type VisualRule struct {
	Tiers []KeywordTier
}

func (r *VisualRule) Key() string  { return "visual_indicators" }
func (r *VisualRule) Name() string { return "Visual indicators" }

func (r *VisualRule) Evaluate(in Input) Contribution {
	c := Contribution{
		Key:  r.Key(),
		Name: r.Name(),
	}
	if in.Assessment == nil {
		return c
	}

	text := in.Assessment.VisualText()
	for _, tier := range r.Tiers {
		kw, ok := signal.MatchAny(text, tier.Keywords)
		if !ok {
			continue
		}
		c.Points = tier.Points
		c.Driver = tier.Driver
		c.Matched = kw
		break
	}
	return c
}
