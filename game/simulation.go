package game

import (
	"context"

	"github.com/pthm-cable/critter/components"
	"github.com/pthm-cable/critter/systems"
	"github.com/pthm-cable/critter/telemetry"
)

// RunResult summarises a finished run.
type RunResult struct {
	Ticks     int64
	SimTime   float64
	AllDone   bool
	Cancelled bool
	Critters  []CritterResult
}

// CritterResult is the outcome for one critter.
type CritterResult struct {
	ID       uint32
	Seen     components.ColorSet
	Done     bool
	DoneTick int64 // -1 if never done
	DoneTime float64
}

// ctxCheckInterval is how many ticks Run simulates between context checks.
const ctxCheckInterval = 256

// Run steps the simulation until the tick limit, until every critter is done
// (with stop_on_done), or until ctx is cancelled. Cancellation is not an error.
func (g *Game) Run(ctx context.Context) RunResult {
	cancelled := false
	for g.maxTicks == 0 || g.tick < g.maxTicks {
		if g.tick%ctxCheckInterval == 0 && ctx.Err() != nil {
			cancelled = true
			break
		}
		g.Step()
		if g.cfg.Simulation.StopOnDone && g.AllDone() {
			break
		}
	}
	return g.Result(cancelled)
}

// Result builds the run summary for the current state.
func (g *Game) Result(cancelled bool) RunResult {
	res := RunResult{
		Ticks:     g.tick,
		SimTime:   g.SimTime(),
		AllDone:   g.AllDone(),
		Cancelled: cancelled,
	}
	for _, s := range g.Critters() {
		cr := CritterResult{
			ID:       s.ID,
			Seen:     s.Memory.Seen,
			Done:     s.Status.Done,
			DoneTick: s.Status.DoneTick,
		}
		if s.Status.Done {
			cr.DoneTime = float64(s.Status.DoneTick) * g.cfg.Simulation.DT
		}
		res.Critters = append(res.Critters, cr)
	}
	return res
}

// Step runs a single tick of the simulation. Each critter goes through the
// pipeline in fixed order: sensors, movement (inhibited by the previous tick's
// gate output), motion, recogniser, memory latch, comparator and stop gate.
func (g *Game) Step() {
	g.tick++
	simTime := g.SimTime()
	trace := g.traceDue()
	confirm := g.cfg.Memory.ConfirmTicks

	var events []telemetry.Event

	query := g.critterFilter.Query()
	for query.Next() {
		critter, pose, radar, cmd, sight, mem, status := query.Get()
		s := g.streams[critter.ID]

		// 1. Sensors and exploration signal
		*radar = systems.ComputeRadar(*pose, g.grid, g.sensors, s.rng)
		radar.Noise = s.noise.Next()

		// 2. Movement pathway, silenced once done
		inhibited := status.Done
		*cmd = systems.Drive(g.policy, *radar, inhibited, s.rng)

		// 3. Motion with wall collisions
		moved := systems.ApplyCommand(pose, *cmd, g.grid, g.motion)
		cmd.Blocked = moved.Blocked

		// 4. Colour recogniser and memory latch
		*sight = g.recognizer.Recognize(*pose, g.grid, s.rng)
		if c := systems.Latch(mem, sight.Label, confirm); c != components.ColorNone {
			g.collector.RecordLatch()
			events = append(events, telemetry.NewColorLatchedEvent(g.tick, simTime, critter.ID, c, *mem))
		}

		// 5. Comparator and stop gate
		score := g.comparator.Score(*mem)
		if g.gate.Update(status, score, g.tick) {
			g.doneCount++
			g.collector.RecordTargetReached()
			events = append(events, telemetry.NewTargetReachedEvent(g.tick, simTime, critter.ID, *mem, score))
		}

		g.collector.RecordMove(moved.Distance, moved.Blocked)
		if cmd.Explore {
			g.collector.RecordExplore()
		}
		if inhibited {
			g.collector.RecordInhibited()
		}

		if trace {
			g.traceBuf = append(g.traceBuf, telemetry.NewTraceRecord(
				g.tick, simTime, critter.ID,
				*pose, *radar, *cmd, *sight, *mem, *status,
				g.grid.Width(), g.grid.Height(),
			))
		}
	}

	for _, e := range events {
		g.emitEvent(e)
	}
	if len(g.traceBuf) >= traceFlushRows {
		g.writeTrace()
	}
	g.flushTelemetry()
}
