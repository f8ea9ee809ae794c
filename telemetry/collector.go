package telemetry

import "math"

// Collector accumulates per-tick activity within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int64
	dt                  float64

	// Current window tracking
	windowStartTick int64

	// Counters for current window
	distance       float64
	blockedMoves   int
	exploreTicks   int
	inhibitedTicks int
	latches        int
	targetsReached int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int64(math.Round(windowDurationSec / dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordMove records the distance covered by one critter this tick.
func (c *Collector) RecordMove(distance float64, blocked bool) {
	c.distance += distance
	if blocked {
		c.blockedMoves++
	}
}

// RecordExplore records a random exploration turn.
func (c *Collector) RecordExplore() {
	c.exploreTicks++
}

// RecordInhibited records a tick where the stop gate held a critter still.
func (c *Collector) RecordInhibited() {
	c.inhibitedTicks++
}

// RecordLatch records a memory flag being set.
func (c *Collector) RecordLatch() {
	c.latches++
}

// RecordTargetReached records a stop gate opening.
func (c *Collector) RecordTargetReached() {
	c.targetsReached++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// seenCounts holds the number of colours each critter has latched, and
// doneCount how many critters are done, both sampled at window end.
func (c *Collector) Flush(currentTick int64, seenCounts []float64, doneCount int) WindowStats {
	mean, p10, p50, p90 := ComputeStats(seenCounts)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Critters:     len(seenCounts),
		DoneCritters: doneCount,

		Distance:       c.distance,
		BlockedMoves:   c.blockedMoves,
		ExploreTicks:   c.exploreTicks,
		InhibitedTicks: c.inhibitedTicks,
		Latches:        c.latches,
		TargetsReached: c.targetsReached,

		SeenMean: mean,
		SeenP10:  p10,
		SeenP50:  p50,
		SeenP90:  p90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.distance = 0
	c.blockedMoves = 0
	c.exploreTicks = 0
	c.inhibitedTicks = 0
	c.latches = 0
	c.targetsReached = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
