package systems

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/critter/components"
)

// SensorParams configures the ray sensors.
type SensorParams struct {
	MaxDistance   float64
	Offsets       [3]float64 // left, forward, right in direction units
	RadiansPerDir float64
	NoiseSigma    float64 // gaussian noise added to each ray (0 = none)
}

// ComputeRadar samples the three wall distance rays for a pose.
// Readings are always within [0, MaxDistance]; rng is only used when
// NoiseSigma > 0 and may be nil otherwise.
func ComputeRadar(pose components.Pose, grid *Grid, p SensorParams, rng *rand.Rand) components.Radar {
	var d [3]float64
	for i, off := range p.Offsets {
		d[i] = CastRay(grid, pose.X, pose.Y, pose.Heading+off*p.RadiansPerDir, p.MaxDistance)
	}

	if p.NoiseSigma > 0 && rng != nil {
		n := distuv.Normal{Mu: 0, Sigma: p.NoiseSigma, Src: rng}
		for i := range d {
			d[i] = clampFloat(d[i]+n.Rand(), 0, p.MaxDistance)
		}
	}

	return components.Radar{Left: d[0], Forward: d[1], Right: d[2]}
}

// CastRay returns the distance from (x, y) along heading to the first wall
// cell, capped at maxDist. Cells outside the grid count as walls.
func CastRay(grid *Grid, x, y, heading, maxDist float64) float64 {
	dx, dy := headingVector(heading)

	cx, cy := int(math.Floor(x)), int(math.Floor(y))
	if grid.IsWall(cx, cy) {
		return 0
	}

	// Exact grid traversal: step to whichever cell boundary the ray meets first.
	stepX, tMaxX, tDeltaX := rayAxis(x, dx)
	stepY, tMaxY, tDeltaY := rayAxis(y, dy)

	for {
		var t float64
		if tMaxX < tMaxY {
			t = tMaxX
			cx += stepX
			tMaxX += tDeltaX
		} else {
			t = tMaxY
			cy += stepY
			tMaxY += tDeltaY
		}
		if t >= maxDist {
			return maxDist
		}
		if grid.IsWall(cx, cy) {
			return clampFloat(t, 0, maxDist)
		}
	}
}

// rayAxis returns the step direction, the ray parameter of the first cell
// boundary crossing, and the parameter spacing between crossings for one axis.
func rayAxis(pos, dir float64) (step int, tMax, tDelta float64) {
	switch {
	case dir > 1e-12:
		return 1, (math.Floor(pos) + 1 - pos) / dir, 1 / dir
	case dir < -1e-12:
		return -1, (pos - math.Floor(pos)) / -dir, 1 / -dir
	default:
		return 0, math.Inf(1), math.Inf(1)
	}
}

// headingVector converts a heading (0 = north, clockwise) to a unit vector in
// grid coordinates.
func headingVector(heading float64) (dx, dy float64) {
	return math.Sin(heading), -math.Cos(heading)
}
