// Package projection simulates the auxiliary indicators that accompany an
// algae risk score: a satellite bundle, a nutrient bundle and a seven day
// forward trajectory. None of it is measured. Values are derived from the
// score plus bounded noise from a Jitter source.
package projection

import (
	"math/rand/v2"
	"sync"
)

// Jitter is a source of bounded noise.
type Jitter interface {
	// Uniform returns a value in [lo, hi).
	Uniform(lo, hi float64) float64
}

// Zero is a Jitter that always returns 0, making projections exact.
var Zero Jitter = zeroJitter{}

type zeroJitter struct{}

func (zeroJitter) Uniform(_, _ float64) float64 { return 0 }

type randomJitter struct{}

// NewRandomJitter returns a Jitter backed by the process-wide random source.
// It is safe for concurrent use.
func NewRandomJitter() Jitter { return randomJitter{} }

func (randomJitter) Uniform(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

type seededJitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededJitter returns a deterministic Jitter for reproducible runs.
func NewSeededJitter(seed uint64) Jitter {
	return &seededJitter{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (j *seededJitter) Uniform(lo, hi float64) float64 {
	j.mu.Lock()
	f := j.rng.Float64()
	j.mu.Unlock()
	return lo + f*(hi-lo)
}
