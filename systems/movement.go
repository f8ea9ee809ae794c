package systems

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/critter/components"
	"github.com/pthm-cable/critter/config"
)

// Policy maps one tick of sensor readings to a movement command.
// Implementations must be pure apart from draws on rng.
type Policy interface {
	Decide(in components.Radar, rng *rand.Rand) components.Command
}

// NewPolicy returns the policy named in the movement config.
func NewPolicy(cfg config.MovementConfig) (Policy, error) {
	switch cfg.Policy {
	case "critter":
		return ExplorePolicy{
			RotationThreshold: cfg.RotationThreshold,
			ExploreSpeed:      cfg.ExploreSpeed,
			ForwardDivisor:    cfg.ForwardDivisor,
		}, nil
	case "threshold":
		return ThresholdPolicy{
			NearDistance: cfg.NearDistance,
			SpeedGain:    cfg.SpeedGain,
			TurnMax:      cfg.TurnMax,
		}, nil
	case "avoid":
		return AvoidPolicy{NearDistance: cfg.NearDistance}, nil
	}
	return nil, fmt.Errorf("unknown movement policy %q", cfg.Policy)
}

// ExplorePolicy avoids walls by steering toward the more open side, with speed
// proportional to the forward reading. When the exploration signal exceeds the
// threshold it overrides with a slow turn whose direction follows the signal's
// sign and whose rate shrinks as the way ahead opens up.
type ExplorePolicy struct {
	RotationThreshold float64
	ExploreSpeed      float64
	ForwardDivisor    float64
}

func (p ExplorePolicy) Decide(in components.Radar, _ *rand.Rand) components.Command {
	if math.Abs(in.Noise) > p.RotationThreshold {
		rotation := math.Abs(in.Noise) - in.Forward/p.ForwardDivisor
		return components.Command{
			Speed:    p.ExploreSpeed,
			Rotation: sign(in.Noise) * rotation,
			Explore:  true,
		}
	}
	return components.Command{
		Speed:    in.Forward / p.ForwardDivisor,
		Rotation: wallTurn(in),
	}
}

// ThresholdPolicy reacts to walls closer than NearDistance: turn when blocked
// ahead, otherwise swerve by a random rate away from a close side wall. Speed
// goes negative (backing off) when the forward wall is too near.
type ThresholdPolicy struct {
	NearDistance float64
	SpeedGain    float64
	TurnMax      float64
}

func (p ThresholdPolicy) Decide(in components.Radar, rng *rand.Rand) components.Command {
	cmd := components.Command{Speed: (in.Forward - p.NearDistance) * p.SpeedGain}
	switch {
	case in.Forward < p.NearDistance:
		cmd.Rotation = 1
	case in.Left < p.NearDistance:
		cmd.Rotation = rng.Float64() * p.TurnMax
		cmd.Explore = true
	case in.Right < p.NearDistance:
		cmd.Rotation = -rng.Float64() * p.TurnMax
		cmd.Explore = true
	}
	return cmd
}

// AvoidPolicy is plain wall avoidance with no exploration term.
type AvoidPolicy struct {
	NearDistance float64
}

func (p AvoidPolicy) Decide(in components.Radar, _ *rand.Rand) components.Command {
	return components.Command{
		Speed:    in.Forward - p.NearDistance,
		Rotation: wallTurn(in),
	}
}

// stallEpsilon bounds readings treated as touching a wall.
const stallEpsilon = 1e-3

// wallTurn steers toward the more open side. Head on against a wall with
// both sides equally close there is no open side, so it turns clockwise.
func wallTurn(in components.Radar) float64 {
	turn := in.Right - in.Left
	if in.Forward < stallEpsilon && math.Abs(turn) < stallEpsilon {
		return 1
	}
	return turn
}

// Drive runs the movement pathway for one tick. Inhibition silences the
// pathway's input, so no command is decoded and the body holds still; the
// policy itself is untouched and resumes as soon as inhibition is lifted.
func Drive(policy Policy, in components.Radar, inhibited bool, rng *rand.Rand) components.Command {
	if inhibited {
		return components.Command{}
	}
	return policy.Decide(in, rng)
}
