// Package components defines ECS components for the simulation.
package components

import "math"

// Critter identifies an agent.
type Critter struct {
	ID uint32
}

// Pose represents an agent's continuous position and heading.
// Cell (i, j) covers [i, i+1) x [j, j+1). Heading is in radians, 0 = north,
// clockwise positive (y grows downward).
type Pose struct {
	X, Y    float64
	Heading float64
}

// Cell returns the grid cell containing the pose.
func (p Pose) Cell() (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y))
}

// Radar holds the sensor readings of one tick.
type Radar struct {
	Left, Forward, Right float64
	Noise                float64 // exploration signal sampled this tick
}

// Command is the decoded (speed, rotation) output of the movement pathway.
type Command struct {
	Speed    float64
	Rotation float64
	Explore  bool // random exploration turn overrode wall avoidance
	Blocked  bool // last move was stopped by a wall
}

// Sight holds the colour recognised in the occupied cell.
type Sight struct {
	Label Color // recogniser output, possibly noisy
	Truth Color // actual cell colour
}

// Memory is the colour memory bank: one latch per tracked colour.
type Memory struct {
	Tracked  ColorSet
	Seen     ColorSet
	Evidence [NumColors]int // consecutive ticks each colour has been recognised
}

// Status holds the comparator score and the stop gate output.
type Status struct {
	Score    float64
	Done     bool
	DoneTick int64 // first tick the gate opened, -1 while not done
}
