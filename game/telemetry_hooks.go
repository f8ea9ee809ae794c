package game

import (
	"log/slog"

	"github.com/pthm-cable/critter/telemetry"
)

// traceFlushRows is how many buffered trace rows trigger a CSV write.
const traceFlushRows = 512

// traceDue reports whether this tick is sampled into the trace.
func (g *Game) traceDue() bool {
	every := int64(g.cfg.Telemetry.TraceEvery)
	return g.outputManager != nil && every > 0 && g.tick%every == 0
}

// writeTrace writes and clears the buffered trace rows.
func (g *Game) writeTrace() {
	if err := g.outputManager.WriteTrace(g.traceBuf); err != nil {
		slog.Error("failed to write trace", "error", err)
	}
	g.traceBuf = g.traceBuf[:0]
}

// emitEvent logs an event and forwards it to the callback and events.csv.
func (g *Game) emitEvent(e telemetry.Event) {
	e.LogEvent()

	if g.eventCallback != nil {
		g.eventCallback(e)
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteEvent(e); err != nil {
			slog.Error("failed to write event", "error", err)
		}
	}
}

// flushTelemetry checks if the stats window should be flushed.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	seenCounts := g.sampleSeenCounts()
	stats := g.collector.Flush(g.tick, seenCounts, g.doneCount)

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
	}
}

// sampleSeenCounts collects how many colours each critter has latched.
func (g *Game) sampleSeenCounts() []float64 {
	counts := make([]float64, 0, len(g.critters))
	query := g.critterFilter.Query()
	for query.Next() {
		_, _, _, _, _, mem, _ := query.Get()
		counts = append(counts, float64(mem.Seen.Len()))
	}
	return counts
}
