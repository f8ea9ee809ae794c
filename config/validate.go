package config

import (
	"errors"
	"fmt"
	"slices"
)

// ColorNames lists the trackable colours in memory bank order.
var ColorNames = []string{"green", "red", "blue", "magenta", "yellow"}

// Policies lists the accepted movement policy names.
var Policies = []string{"critter", "threshold", "avoid"}

// Encodings lists the accepted comparator encodings.
var Encodings = []string{"set", "hrr"}

// NoiseKinds lists the accepted exploration noise sources.
var NoiseKinds = []string{"filtered", "simplex", "none"}

// Validate checks parameter ranges and cross references.
// The map itself is checked when the grid is parsed.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Simulation.DT <= 0 {
		bad("simulation.dt must be positive, got %v", c.Simulation.DT)
	}
	if c.Simulation.Duration < 0 {
		bad("simulation.duration must not be negative, got %v", c.Simulation.Duration)
	}
	if c.Simulation.Directions < 1 {
		bad("simulation.directions must be at least 1, got %d", c.Simulation.Directions)
	}
	if len(c.World.Starts) == 0 {
		bad("world.starts must place at least one critter")
	}
	if !slices.Contains(Policies, c.Movement.Policy) {
		bad("movement.policy %q not one of %v", c.Movement.Policy, Policies)
	}
	if c.Movement.ForwardDivisor <= 0 {
		bad("movement.forward_divisor must be positive, got %v", c.Movement.ForwardDivisor)
	}
	if c.Movement.MaxSpeed < 0 {
		bad("movement.max_speed must not be negative, got %v", c.Movement.MaxSpeed)
	}
	if c.Movement.MaxRotate < 0 {
		bad("movement.max_rotate must not be negative, got %v", c.Movement.MaxRotate)
	}
	if c.Sensors.MaxDistance <= 0 {
		bad("sensors.max_distance must be positive, got %v", c.Sensors.MaxDistance)
	}
	if len(c.Sensors.Offsets) != 3 {
		bad("sensors.offsets needs left, forward and right, got %d values", len(c.Sensors.Offsets))
	}
	if c.Sensors.NoiseSigma < 0 {
		bad("sensors.noise_sigma must not be negative")
	}
	if !slices.Contains(NoiseKinds, c.Noise.Kind) {
		bad("noise.kind %q not one of %v", c.Noise.Kind, NoiseKinds)
	}
	if c.Noise.Kind != "none" && c.Noise.Tau <= 0 {
		bad("noise.tau must be positive, got %v", c.Noise.Tau)
	}
	if c.Recognizer.FlipProb < 0 || c.Recognizer.FlipProb > 1 {
		bad("recognizer.flip_prob must be in [0, 1], got %v", c.Recognizer.FlipProb)
	}

	if len(c.Memory.Colors) == 0 {
		bad("memory.colors must track at least one colour")
	}
	seen := make(map[string]bool, len(c.Memory.Colors))
	for _, name := range c.Memory.Colors {
		if !slices.Contains(ColorNames, name) {
			bad("memory.colors: unknown colour %q", name)
		}
		if seen[name] {
			bad("memory.colors: %q listed twice", name)
		}
		seen[name] = true
	}
	if c.Memory.ConfirmTicks < 1 {
		bad("memory.confirm_ticks must be at least 1, got %d", c.Memory.ConfirmTicks)
	}
	if !slices.Contains(Encodings, c.Memory.Encoding) {
		bad("memory.encoding %q not one of %v", c.Memory.Encoding, Encodings)
	}
	if c.Memory.Encoding == "hrr" && c.Memory.Dimensions < 4 {
		bad("memory.dimensions must be at least 4 for hrr, got %d", c.Memory.Dimensions)
	}

	if len(c.Stop.TargetColors) > 0 {
		for _, name := range c.Stop.TargetColors {
			if !seen[name] {
				bad("stop.target_colors: %q is not a tracked colour", name)
			}
		}
	} else if c.Stop.ColorsToFind < 1 || c.Stop.ColorsToFind > len(c.Memory.Colors) {
		bad("stop.colors_to_find must be in [1, %d], got %d", len(c.Memory.Colors), c.Stop.ColorsToFind)
	}
	if c.Stop.SimThreshold < 0 || c.Stop.SimThreshold >= 1 {
		bad("stop.sim_threshold must be in [0, 1), got %v", c.Stop.SimThreshold)
	}

	if c.Telemetry.StatsWindow <= 0 {
		bad("telemetry.stats_window must be positive, got %v", c.Telemetry.StatsWindow)
	}
	if c.Telemetry.TraceEvery < 0 {
		bad("telemetry.trace_every must not be negative")
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
