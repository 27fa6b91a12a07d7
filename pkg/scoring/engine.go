package scoring

import (
	"fmt"

	"github.com/microscan/microscan/pkg/signal"
)

// Projector produces the auxiliary projection attached to a result. It is
// given the final score and the signals the score was computed from.
type Projector interface {
	Project(score int, signals signal.Set) *Projection
}

// Engine runs a fixed rule set against an Input and produces a RiskResult.
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	variant   Variant
	rules     []Rule
	projector Projector
}

// Option configures an Engine.
type Option func(*Engine)

// WithProjector attaches a projection step to every scored result.
func WithProjector(p Projector) Option {
	return func(e *Engine) { e.projector = p }
}

// NewEngine creates a scoring engine for variant with the given rules.
// Rules are evaluated in the order given.
func NewEngine(variant Variant, rules []Rule, opts ...Option) *Engine {
	e := &Engine{variant: variant, rules: rules}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewAlgaeEngine returns the harmful algal bloom engine. p may be nil, in
// which case results carry no projection.
func NewAlgaeEngine(w Weights, p Projector) *Engine {
	var opts []Option
	if p != nil {
		opts = append(opts, WithProjector(p))
	}
	return NewEngine(VariantAlgae, AlgaeRules(w), opts...)
}

// NewOpticalEngine returns the microplastic engine.
func NewOpticalEngine(w Weights) *Engine {
	return NewEngine(VariantMicroplastic, OpticalRules(w))
}

// Variant returns the variant this engine scores.
func (e *Engine) Variant() Variant { return e.variant }

// Score evaluates every rule and produces a complete RiskResult.
func (e *Engine) Score(in Input) (*RiskResult, error) {
	if len(e.rules) == 0 {
		return nil, fmt.Errorf("engine for %s has no rules", e.variant)
	}

	result := &RiskResult{
		Variant:   e.variant,
		Breakdown: []Contribution{},
	}

	var total float64
	for _, r := range e.rules {
		c := r.Evaluate(in)
		if c.Points == 0 {
			continue
		}
		total += c.Points
		result.Breakdown = append(result.Breakdown, c)
	}

	result.Score = ClampScore(total)
	result.Tier = TierFromScore(result.Score)

	ex := Explain(result.Breakdown)
	result.Drivers = ex.Drivers
	result.Details = ex.Details

	result.Actions = ActionsFor(e.variant, result.Tier)
	result.PrimaryAction = result.Actions[0]

	signals := in.Signals
	if in.Assessment != nil {
		signals = signals.Merge(in.Assessment.Signals())
	}
	if signals.Len() > 0 {
		result.Signals = signals.Map()
	}

	if e.projector != nil {
		result.Projection = e.projector.Project(result.Score, in.Signals)
	}

	return result, nil
}
