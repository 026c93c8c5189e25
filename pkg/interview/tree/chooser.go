package tree

import (
	"math/rand"
	"time"
)

// DirectionChooser draws a growth direction from depth/breadth preference
// weights. The draw is deliberately probabilistic so the interview style
// varies between deep-dives and broad surveys without a fixed schedule.
type DirectionChooser struct {
	depthWeight float64
	rng         *rand.Rand
}

// NewDirectionChooser builds a chooser from optional preference weights.
// If only one weight is given the other is its complement; if neither is
// given both default to 0.5. The two are normalized to sum to 1.
func NewDirectionChooser(depthWeight, breadthWeight *float64) *DirectionChooser {
	var dw float64
	switch {
	case depthWeight != nil && breadthWeight != nil:
		total := *depthWeight + *breadthWeight
		if total <= 0 {
			dw = 0.5
		} else {
			dw = *depthWeight / total
		}
	case depthWeight != nil:
		dw = *depthWeight
	case breadthWeight != nil:
		dw = 1 - *breadthWeight
	default:
		dw = 0.5
	}

	return &DirectionChooser{
		depthWeight: dw,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand replaces the random source; used by tests for determinism
func (c *DirectionChooser) WithRand(rng *rand.Rand) *DirectionChooser {
	c.rng = rng
	return c
}

// Choose draws one direction using the configured weights
func (c *DirectionChooser) Choose() Direction {
	if c.rng.Float64() < c.depthWeight {
		return Deeper
	}
	return Broader
}
