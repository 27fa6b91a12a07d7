package scoring

import (
	"fmt"
	"math"
	"strings"
)

// Tier is an ordered risk classification. Higher values are more severe.
type Tier int

const (
	TierLow Tier = iota
	TierModerate
	TierHigh
	TierCritical
)

var tierNames = [...]string{
	TierLow:      "Low",
	TierModerate: "Moderate",
	TierHigh:     "High",
	TierCritical: "Critical",
}

// tierBreakpoints is ordered highest first. The last entry catches every
// remaining score so classification is total.
var tierBreakpoints = [...]struct {
	min  int
	tier Tier
}{
	{60, TierCritical},
	{40, TierHigh},
	{20, TierModerate},
	{math.MinInt, TierLow},
}

// TierFromScore maps a composite score to its tier.
func TierFromScore(score int) Tier {
	for _, bp := range tierBreakpoints {
		if score >= bp.min {
			return bp.tier
		}
	}
	return TierLow
}

// ClampScore rounds an accumulated total and bounds it to [0, 100].
func ClampScore(total float64) int {
	r := math.Round(total)
	switch {
	case math.IsNaN(r) || r < 0:
		return 0
	case r > 100:
		return 100
	default:
		return int(r)
	}
}

func (t Tier) String() string {
	if t < TierLow || t > TierCritical {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// ParseTier parses a tier name, case-insensitively.
func ParseTier(s string) (Tier, error) {
	for i, name := range tierNames {
		if strings.EqualFold(s, name) {
			return Tier(i), nil
		}
	}
	return TierLow, fmt.Errorf("unknown risk tier %q", s)
}

func (t Tier) MarshalText() ([]byte, error) {
	if t < TierLow || t > TierCritical {
		return nil, fmt.Errorf("invalid risk tier %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
