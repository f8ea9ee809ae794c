package systems

import "github.com/pthm-cable/critter/components"

// NewMemory returns a memory bank tracking the given colours, all unseen.
func NewMemory(tracked components.ColorSet) components.Memory {
	return components.Memory{Tracked: tracked}
}

// Latch applies one tick of the memory write rules. Each tracked colour has
// its own guarded rule: the colour's evidence counts consecutive ticks it was
// recognised, and once it reaches confirmTicks the seen flag latches. Flags
// are never cleared. Returns the colour latched this tick, or ColorNone.
func Latch(mem *components.Memory, label components.Color, confirmTicks int) components.Color {
	latched := components.ColorNone
	for c := components.ColorGreen; c < components.NumColors; c++ {
		if !mem.Tracked.Has(c) {
			continue
		}
		if c != label {
			mem.Evidence[c] = 0
			continue
		}
		mem.Evidence[c]++
		if !mem.Seen.Has(c) && mem.Evidence[c] >= confirmTicks {
			mem.Seen = mem.Seen.Add(c)
			latched = c
		}
	}
	return latched
}
