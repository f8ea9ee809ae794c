package systems

import (
	"math"

	"github.com/pthm-cable/critter/components"
)

// MotionParams converts normalized commands into pose changes.
type MotionParams struct {
	DT            float64
	MaxSpeed      float64 // cells per second at speed 1
	MaxRotate     float64 // direction units per second at rotation 1
	RadiansPerDir float64
}

// MoveResult describes what a command did to the pose.
type MoveResult struct {
	Distance float64 // distance actually travelled
	Blocked  bool    // a wall stopped all or part of the move
}

// ApplyCommand turns the body, then moves it forward along the new heading.
// A step into a wall cell, or diagonally between two wall cells, is blocked;
// the body slides along whichever axis is still free, or stays put.
func ApplyCommand(pose *components.Pose, cmd components.Command, grid *Grid, p MotionParams) MoveResult {
	pose.Heading = wrapAngle(pose.Heading + cmd.Rotation*p.DT*p.MaxRotate*p.RadiansPerDir)

	dist := cmd.Speed * p.DT * p.MaxSpeed
	if dist == 0 {
		return MoveResult{}
	}
	dx, dy := headingVector(pose.Heading)
	dx *= dist
	dy *= dist

	switch {
	case free(grid, pose.X+dx, pose.Y+dy) && (free(grid, pose.X+dx, pose.Y) || free(grid, pose.X, pose.Y+dy)):
		pose.X += dx
		pose.Y += dy
		return MoveResult{Distance: math.Abs(dist)}
	case free(grid, pose.X+dx, pose.Y):
		pose.X += dx
		return MoveResult{Distance: math.Abs(dx), Blocked: true}
	case free(grid, pose.X, pose.Y+dy):
		pose.Y += dy
		return MoveResult{Distance: math.Abs(dy), Blocked: true}
	default:
		return MoveResult{Blocked: true}
	}
}

func free(grid *Grid, x, y float64) bool {
	return !grid.IsWall(int(math.Floor(x)), int(math.Floor(y)))
}

// StartPose places a body at the centre of cell (x, y) facing dir direction units.
func StartPose(x, y int, dir, radiansPerDir float64) components.Pose {
	return components.Pose{
		X:       float64(x) + 0.5,
		Y:       float64(y) + 0.5,
		Heading: wrapAngle(dir * radiansPerDir),
	}
}
