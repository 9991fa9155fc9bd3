package domain

import "math/rand/v2"

const (
	// TopTierThreshold splits the population: scores strictly above it form the top tier.
	TopTierThreshold = 10

	// TopTierWeight is the probability of drawing from the top tier
	// when both tiers have members.
	TopTierWeight = 0.7
)

// Rand is the source of randomness for tier selection.
type Rand interface {
	Float64() float64
}

// DefaultRand returns a Rand backed by the global math/rand/v2 source.
// It is safe for concurrent use.
func DefaultRand() Rand { return globalRand{} }

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Tier is one of the two score brackets used by the random pick.
type Tier int

const (
	TierTop  Tier = iota // score > TopTierThreshold
	TierRest             // score <= TopTierThreshold
)

func (t Tier) String() string {
	switch t {
	case TierTop:
		return "top"
	case TierRest:
		return "rest"
	default:
		return "unknown"
	}
}

// PickTier draws a tier: TierTop with probability TopTierWeight, TierRest otherwise.
func PickTier(r Rand) Tier {
	if r.Float64() < TopTierWeight {
		return TierTop
	}
	return TierRest
}

// Filter returns the score filter selecting members of the tier.
func (t Tier) Filter() *ScoreFilter {
	if t == TierTop {
		return &ScoreFilter{Above: true, Threshold: TopTierThreshold}
	}
	return &ScoreFilter{Above: false, Threshold: TopTierThreshold}
}

// ScoreFilter restricts a query to scores above (strictly) or at-or-below a threshold.
// A nil *ScoreFilter means no restriction.
type ScoreFilter struct {
	Above     bool
	Threshold int
}
