package systems

import (
	"math/rand/v2"

	"github.com/pthm-cable/critter/components"
)

// Recognizer labels the colour of the occupied cell.
type Recognizer struct {
	FlipProb float64 // probability of replacing the label with a random one
}

// Recognize returns the label for the cell under pose. Walls and uncoloured
// cells read as ColorNone. rng is only used when FlipProb > 0.
func (r Recognizer) Recognize(pose components.Pose, grid *Grid, rng *rand.Rand) components.Sight {
	x, y := pose.Cell()
	truth := grid.ColorAt(x, y)
	s := components.Sight{Label: truth, Truth: truth}
	if r.FlipProb > 0 && rng.Float64() < r.FlipProb {
		s.Label = components.Color(rng.IntN(int(components.NumColors)))
	}
	return s
}
