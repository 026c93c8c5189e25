package tree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestDirectionChooser_DegenerateWeights(t *testing.T) {
	allDepth := NewDirectionChooser(floatPtr(1.0), floatPtr(0.0))
	allBreadth := NewDirectionChooser(floatPtr(0.0), floatPtr(1.0))

	for i := 0; i < 100; i++ {
		require.Equal(t, Deeper, allDepth.Choose())
		require.Equal(t, Broader, allBreadth.Choose())
	}
}

func TestDirectionChooser_ComplementAndDefaults(t *testing.T) {
	tests := []struct {
		name      string
		depth     *float64
		breadth   *float64
		wantDepth float64
	}{
		{"both given, normalized", floatPtr(3.0), floatPtr(1.0), 0.75},
		{"only depth", floatPtr(0.8), nil, 0.8},
		{"only breadth, complemented", nil, floatPtr(0.3), 0.7},
		{"neither defaults to even", nil, nil, 0.5},
		{"degenerate zero weights fall back", floatPtr(0.0), floatPtr(0.0), 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chooser := NewDirectionChooser(tt.depth, tt.breadth)
			require.InDelta(t, tt.wantDepth, chooser.depthWeight, 1e-9)
		})
	}
}

func TestDirectionChooser_EvenWeightsAreBalanced(t *testing.T) {
	chooser := NewDirectionChooser(nil, nil).WithRand(rand.New(rand.NewSource(42)))

	const draws = 1000
	deeper := 0
	for i := 0; i < draws; i++ {
		if chooser.Choose() == Deeper {
			deeper++
		}
	}

	// binomial 99% confidence band around 500 for p=0.5, n=1000
	require.Greater(t, deeper, 459)
	require.Less(t, deeper, 541)
}
