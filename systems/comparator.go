package systems

import (
	"fmt"
	"math/rand/v2"

	"github.com/pthm-cable/critter/components"
	"github.com/pthm-cable/critter/config"
)

// Target is the pattern the memory bank is compared against: either "Count
// colours found" or, when Colors is non-empty, "all of Colors found".
type Target struct {
	Count  int
	Colors components.ColorSet
}

// NewTarget builds the target from config and checks it only references
// tracked colours.
func NewTarget(cfg config.StopConfig, tracked components.ColorSet) (Target, error) {
	if len(cfg.TargetColors) > 0 {
		var set components.ColorSet
		for _, name := range cfg.TargetColors {
			c, err := components.ParseColor(name)
			if err != nil {
				return Target{}, fmt.Errorf("target: %w", err)
			}
			if !tracked.Has(c) {
				return Target{}, fmt.Errorf("target colour %s is not tracked", c)
			}
			set = set.Add(c)
		}
		return Target{Count: set.Len(), Colors: set}, nil
	}
	if cfg.ColorsToFind < 1 || cfg.ColorsToFind > tracked.Len() {
		return Target{}, fmt.Errorf("target count %d outside [1, %d]", cfg.ColorsToFind, tracked.Len())
	}
	return Target{Count: cfg.ColorsToFind}, nil
}

// Satisfied reports whether a seen-set meets the target.
func (t Target) Satisfied(seen components.ColorSet) bool {
	if t.Colors != 0 {
		return seen.Contains(t.Colors)
	}
	return seen.Len() >= t.Count
}

// TrackedSet parses the tracked colour names.
func TrackedSet(names []string) (components.ColorSet, error) {
	var set components.ColorSet
	for _, name := range names {
		c, err := components.ParseColor(name)
		if err != nil {
			return 0, err
		}
		if c == components.ColorNone {
			return 0, fmt.Errorf("colour %q cannot be tracked", name)
		}
		set = set.Add(c)
	}
	return set, nil
}

// Comparator combines the memory flags into one joint signal and scores it
// against the target.
type Comparator interface {
	Score(mem components.Memory) float64
}

// NewComparator builds the comparator for the configured encoding. rng seeds
// the vector vocabulary and comparator noise of the hrr encoding.
func NewComparator(cfg config.MemoryConfig, target Target, rng *rand.Rand) (Comparator, error) {
	switch cfg.Encoding {
	case "set":
		return SetComparator{Target: target}, nil
	case "hrr":
		return NewHRRComparator(cfg.Dimensions, target, cfg.ComparatorNoise, rng), nil
	}
	return nil, fmt.Errorf("unknown memory encoding %q", cfg.Encoding)
}

// SetComparator treats the seen flags as a set: the score is 1 when the
// target predicate holds and 0 otherwise.
type SetComparator struct {
	Target Target
}

func (c SetComparator) Score(mem components.Memory) float64 {
	if c.Target.Satisfied(mem.Seen & mem.Tracked) {
		return 1
	}
	return 0
}

// Gate is the stop gate: it opens once the score exceeds Threshold and then
// stays open for the rest of the run.
type Gate struct {
	Threshold float64
}

// Update records score and latches Done. Returns true on the tick the gate opens.
func (g Gate) Update(st *components.Status, score float64, tick int64) bool {
	st.Score = score
	if st.Done || score <= g.Threshold {
		return false
	}
	st.Done = true
	st.DoneTick = tick
	return true
}

// String describes the target, e.g. "4 colours" or "all of GRB".
func (t Target) String() string {
	if t.Colors != 0 {
		return "all of " + t.Colors.String()
	}
	return fmt.Sprintf("%d colours", t.Count)
}
