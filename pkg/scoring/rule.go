package scoring

import (
	"strings"

	"github.com/microscan/microscan/pkg/signal"
)

// Input is everything a rule may look at.
type Input struct {
	Signals    signal.Set
	Assessment *signal.Assessment // nil when no vision analysis is available
}

// Rule is the interface that all scoring rules implement. Rules are
// independent: each sees the full input and none sees another's output.
type Rule interface {
	// Key returns the machine-readable rule identifier.
	Key() string
	// Name returns the human-readable rule name.
	Name() string
	// Evaluate computes the rule's contribution. It never fails; a missing
	// signal produces a zero contribution.
	Evaluate(in Input) Contribution
}

// Compare selects the direction of a threshold band.
type Compare int

const (
	Above Compare = iota // value > threshold
	Below                // value < threshold
)

// Band is one step of a threshold ladder. Driver may contain "{value}",
// which is replaced by the measured value. An empty Driver contributes
// points silently.
type Band struct {
	Compare   Compare
	Threshold float64
	Points    float64
	Driver    string
}

func (b Band) matches(v float64) bool {
	if b.Compare == Below {
		return v < b.Threshold
	}
	return v > b.Threshold
}

// LadderRule scores a single signal against ordered, non-overlapping bands.
// Bands are checked in order and the first match wins.
type LadderRule struct {
	RuleKey  string
	RuleName string
	Signal   signal.Name
	Bands    []Band
}

func (r *LadderRule) Key() string  { return r.RuleKey }
func (r *LadderRule) Name() string { return r.RuleName }

func (r *LadderRule) Evaluate(in Input) Contribution {
	c := Contribution{
		Key:    r.Key(),
		Name:   r.Name(),
		Signal: r.Signal,
	}

	v, ok := in.Signals.Get(r.Signal)
	if !ok {
		return c
	}
	c.Value = &v

	for _, b := range r.Bands {
		if !b.matches(v) {
			continue
		}
		c.Points = b.Points
		c.Driver = strings.ReplaceAll(b.Driver, "{value}", signal.FormatValue(v))
		break
	}
	return c
}
