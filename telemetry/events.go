// Package telemetry provides run traces, event logging, and windowed stats output.
package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/critter/components"
)

// EventType identifies telemetry events.
type EventType string

const (
	EventColorLatched  EventType = "color_latched"
	EventTargetReached EventType = "target_reached"
)

// Event represents a notable moment in a run.
type Event struct {
	Type    EventType `csv:"type"`
	Tick    int64     `csv:"tick"`
	SimTime float64   `csv:"sim_time"`
	Critter uint32    `csv:"critter"`
	Color   string    `csv:"color"`
	Seen    string    `csv:"seen"`
	Score   float64   `csv:"score"`
}

// NewColorLatchedEvent creates an event for a memory flag being set.
func NewColorLatchedEvent(tick int64, simTime float64, critter uint32, c components.Color, mem components.Memory) Event {
	return Event{
		Type:    EventColorLatched,
		Tick:    tick,
		SimTime: simTime,
		Critter: critter,
		Color:   c.String(),
		Seen:    mem.Seen.String(),
	}
}

// NewTargetReachedEvent creates an event for the stop gate opening.
func NewTargetReachedEvent(tick int64, simTime float64, critter uint32, mem components.Memory, score float64) Event {
	return Event{
		Type:    EventTargetReached,
		Tick:    tick,
		SimTime: simTime,
		Critter: critter,
		Seen:    mem.Seen.String(),
		Score:   score,
	}
}

// LogEvent logs the event using slog.
func (e Event) LogEvent() {
	attrs := []any{
		"type", string(e.Type),
		"tick", e.Tick,
		"sim_time", e.SimTime,
		"critter", e.Critter,
		"seen", e.Seen,
	}
	switch e.Type {
	case EventColorLatched:
		attrs = append(attrs, "color", e.Color)
	case EventTargetReached:
		attrs = append(attrs, "score", e.Score)
	}
	slog.Info("event", attrs...)
}
