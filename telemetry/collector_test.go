package telemetry

import (
	"math"
	"testing"
)

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(1.0, 0.001)
	if got := c.WindowDurationTicks(); got != 1000 {
		t.Fatalf("WindowDurationTicks() = %d, want 1000", got)
	}

	if c.ShouldFlush(999) {
		t.Error("ShouldFlush(999) = true before window end")
	}
	if !c.ShouldFlush(1000) {
		t.Error("ShouldFlush(1000) = false at window end")
	}

	c.RecordMove(0.5, false)
	c.RecordMove(0.25, true)
	c.RecordExplore()
	c.RecordInhibited()
	c.RecordInhibited()
	c.RecordLatch()
	c.RecordTargetReached()

	s := c.Flush(1000, []float64{1, 3}, 1)
	if math.Abs(s.Distance-0.75) > 1e-9 {
		t.Errorf("Distance = %v, want 0.75", s.Distance)
	}
	if s.BlockedMoves != 1 || s.ExploreTicks != 1 || s.InhibitedTicks != 2 {
		t.Errorf("counters = %d/%d/%d, want 1/1/2", s.BlockedMoves, s.ExploreTicks, s.InhibitedTicks)
	}
	if s.Latches != 1 || s.TargetsReached != 1 {
		t.Errorf("latches/targets = %d/%d, want 1/1", s.Latches, s.TargetsReached)
	}
	if s.Critters != 2 || s.DoneCritters != 1 {
		t.Errorf("critters/done = %d/%d, want 2/1", s.Critters, s.DoneCritters)
	}
	if s.SeenMean != 2 {
		t.Errorf("SeenMean = %v, want 2", s.SeenMean)
	}
	if math.Abs(s.SimTimeSec-1.0) > 1e-9 {
		t.Errorf("SimTimeSec = %v, want 1", s.SimTimeSec)
	}

	// Counters reset and the next window starts at the flush tick
	if c.ShouldFlush(1999) {
		t.Error("ShouldFlush(1999) = true in second window")
	}
	s = c.Flush(2000, nil, 0)
	if s.WindowStartTick != 1000 || s.Distance != 0 || s.Latches != 0 {
		t.Errorf("second window not reset: %+v", s)
	}
}

func TestCollectorMinimumWindow(t *testing.T) {
	c := NewCollector(0.0001, 0.001)
	if got := c.WindowDurationTicks(); got != 1 {
		t.Errorf("WindowDurationTicks() = %d, want 1", got)
	}
}
