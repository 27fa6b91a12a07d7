package projection

import (
	"math"
	"time"

	"github.com/microscan/microscan/pkg/scoring"
	"github.com/microscan/microscan/pkg/signal"
)

const (
	forecastDays = 7

	defaultTemperature  = 20.0
	defaultHighTemp     = 25.0
	growingTrendFactor  = 1.05
	decayingTrendFactor = 0.95
)

// Simulator implements scoring.Projector.
type Simulator struct {
	Jitter Jitter
	Now    func() time.Time

	// HighTemp is the temperature above which the forecast trends upward.
	HighTemp float64
}

// NewSimulator returns a simulator with random jitter and the wall clock.
func NewSimulator() *Simulator {
	return &Simulator{
		Jitter:   NewRandomJitter(),
		Now:      time.Now,
		HighTemp: defaultHighTemp,
	}
}

// NewSimulatorFor returns a simulator whose trend threshold is the
// high-temperature threshold of w.
func NewSimulatorFor(w scoring.Weights) *Simulator {
	s := NewSimulator()
	s.HighTemp = w.TempHighThreshold
	return s
}

var _ scoring.Projector = (*Simulator)(nil)

// Project derives the satellite and nutrient bundles and the forecast from
// score. Only the temperature signal is consulted, for the trend direction.
func (s *Simulator) Project(score int, signals signal.Set) *scoring.Projection {
	now := s.now()
	sc := float64(score)

	p := &scoring.Projection{
		Satellite: scoring.Satellite{
			AnalysisDate:       now.Format("2006-01-02"),
			NDVIAnomaly:        round(math.Max(0, sc/100-0.2+s.uniform(-0.1, 0.1)), 2),
			ChlorophyllA:       round(sc*0.8+s.uniform(0, 10), 1),
			CyanobacteriaIndex: cyanobacteriaIndex(score),
		},
		Nutrients: scoring.Nutrients{
			Nitrogen:   round(0.5+sc/20+s.uniform(0, 0.5), 2),
			Phosphorus: round(0.01+sc/500+s.uniform(0, 0.05), 3),
		},
		TrendFactor: s.trendFactor(signals),
	}

	risk := sc
	p.Forecast = make([]scoring.ForecastPoint, 0, forecastDays)
	for i := 1; i <= forecastDays; i++ {
		risk = math.Min(100, math.Max(0, risk*p.TrendFactor+s.uniform(-5, 5)))
		p.Forecast = append(p.Forecast, scoring.ForecastPoint{
			Day:  now.AddDate(0, 0, i).Format("Mon"),
			Risk: int(risk),
		})
	}
	return p
}

func (s *Simulator) trendFactor(signals signal.Set) float64 {
	temp, ok := signals.Get(signal.Temperature)
	if !ok {
		temp = defaultTemperature
	}
	if temp > s.HighTemp {
		return growingTrendFactor
	}
	return decayingTrendFactor
}

func (s *Simulator) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	if s.Jitter == nil {
		return 0
	}
	return s.Jitter.Uniform(lo, hi)
}

func cyanobacteriaIndex(score int) string {
	switch {
	case score > 60:
		return "High"
	case score > 30:
		return "Moderate"
	default:
		return "Low"
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
