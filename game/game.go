// Package game wires the critter components into a headless tick loop.
package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/critter/components"
	"github.com/pthm-cable/critter/config"
	"github.com/pthm-cable/critter/systems"
	"github.com/pthm-cable/critter/telemetry"
)

// Options configures a Game.
type Options struct {
	Seed      int64
	Config    *config.Config // nil = config.Cfg()
	MaxTicks  int64          // 0 = use the configured duration
	LogStats  bool           // log window stats via slog
	OutputDir string         // CSV and config output (empty = disabled)

	// Callbacks for headless callers such as the tuner
	StatsCallback func(telemetry.WindowStats)
	EventCallback func(telemetry.Event)
}

// critterStreams holds the per-critter random processes.
type critterStreams struct {
	rng   *rand.Rand
	noise systems.NoiseSource
}

// Game holds the complete simulation state.
type Game struct {
	cfg *config.Config

	world *ecs.World

	// Entity mapper and filter over the critter components
	critterMap *ecs.Map7[
		components.Critter,
		components.Pose,
		components.Radar,
		components.Command,
		components.Sight,
		components.Memory,
		components.Status,
	]
	critterFilter *ecs.Filter7[
		components.Critter,
		components.Pose,
		components.Radar,
		components.Command,
		components.Sight,
		components.Memory,
		components.Status,
	]

	critters []ecs.Entity
	streams  map[uint32]*critterStreams

	// Static world and pipeline stages
	grid       *systems.Grid
	sensors    systems.SensorParams
	motion     systems.MotionParams
	policy     systems.Policy
	recognizer systems.Recognizer
	target     systems.Target
	comparator systems.Comparator
	gate       systems.Gate

	// State
	tick      int64
	maxTicks  int64
	doneCount int

	// Telemetry
	collector     *telemetry.Collector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	eventCallback func(telemetry.Event)
	traceBuf      []telemetry.TraceRecord
}

// NewGame builds the world, the pipeline stages and one critter per start pose.
func NewGame(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	grid, err := systems.ParseGrid(cfg.World.Map)
	if err != nil {
		return nil, fmt.Errorf("loading map: %w", err)
	}
	if n := grid.Unknown(); n > 0 {
		slog.Warn("map contains unknown characters, loaded as empty", "count", n)
	}

	tracked, err := systems.TrackedSet(cfg.Memory.Colors)
	if err != nil {
		return nil, fmt.Errorf("memory colours: %w", err)
	}
	target, err := systems.NewTarget(cfg.Stop, tracked)
	if err != nil {
		return nil, err
	}
	policy, err := systems.NewPolicy(cfg.Movement)
	if err != nil {
		return nil, err
	}

	// Stream 0 belongs to the shared comparator; critter streams start at 1.
	comparator, err := systems.NewComparator(cfg.Memory, target, newStream(opts.Seed, 0))
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:   cfg,
		world: world,
		critterMap: ecs.NewMap7[
			components.Critter,
			components.Pose,
			components.Radar,
			components.Command,
			components.Sight,
			components.Memory,
			components.Status,
		](world),
		critterFilter: ecs.NewFilter7[
			components.Critter,
			components.Pose,
			components.Radar,
			components.Command,
			components.Sight,
			components.Memory,
			components.Status,
		](world),
		streams: make(map[uint32]*critterStreams),
		grid:    grid,
		sensors: systems.SensorParams{
			MaxDistance:   cfg.Sensors.MaxDistance,
			RadiansPerDir: cfg.Derived.RadiansPerDir,
			NoiseSigma:    cfg.Sensors.NoiseSigma,
		},
		motion: systems.MotionParams{
			DT:            cfg.Simulation.DT,
			MaxSpeed:      cfg.Movement.MaxSpeed,
			MaxRotate:     cfg.Movement.MaxRotate,
			RadiansPerDir: cfg.Derived.RadiansPerDir,
		},
		policy:        policy,
		recognizer:    systems.Recognizer{FlipProb: cfg.Recognizer.FlipProb},
		target:        target,
		comparator:    comparator,
		gate:          systems.Gate{Threshold: cfg.Stop.SimThreshold},
		maxTicks:      cfg.Derived.MaxTicks,
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Simulation.DT),
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
		eventCallback: opts.EventCallback,
	}
	copy(g.sensors.Offsets[:], cfg.Sensors.Offsets)
	if opts.MaxTicks > 0 {
		g.maxTicks = opts.MaxTicks
	}

	for i, s := range cfg.World.Starts {
		if !grid.InBounds(s.X, s.Y) {
			return nil, fmt.Errorf("start %d at (%d, %d) is outside the %dx%d map", i, s.X, s.Y, grid.Width(), grid.Height())
		}
		if grid.IsWall(s.X, s.Y) {
			return nil, fmt.Errorf("start %d at (%d, %d) is a wall", i, s.X, s.Y)
		}
		if err := g.spawnCritter(opts.Seed, s, tracked); err != nil {
			return nil, err
		}
	}
	g.checkReachable(tracked)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, err
	}

	return g, nil
}

// checkReachable warns about starts whose connected region cannot satisfy
// the target. Such a critter explores forever.
func (g *Game) checkReachable(tracked components.ColorSet) {
	nav := systems.NewNavGraph(g.grid)
	for i, s := range g.cfg.World.Starts {
		reach := nav.ReachableColors(s.X, s.Y) & tracked
		if !g.target.Satisfied(reach) {
			slog.Warn("target unreachable from start",
				"start", i,
				"reachable", reach.String(),
				"target", g.target.String(),
			)
		}
	}
}

func newStream(seed int64, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), stream))
}

// spawnCritter creates a critter entity at a start pose with its own random streams.
func (g *Game) spawnCritter(seed int64, s config.StartConfig, tracked components.ColorSet) error {
	id := uint32(len(g.critters))
	rng := newStream(seed, uint64(id)+1)
	noise, err := systems.NewNoiseSource(g.cfg.Noise, g.cfg.Simulation.DT, rng)
	if err != nil {
		return err
	}

	critter := components.Critter{ID: id}
	pose := systems.StartPose(s.X, s.Y, s.Dir, g.cfg.Derived.RadiansPerDir)
	radar := components.Radar{}
	cmd := components.Command{}
	sight := components.Sight{}
	mem := systems.NewMemory(tracked)
	status := components.Status{DoneTick: -1}

	entity := g.critterMap.NewEntity(&critter, &pose, &radar, &cmd, &sight, &mem, &status)
	g.critters = append(g.critters, entity)
	g.streams[id] = &critterStreams{rng: rng, noise: noise}
	return nil
}

// Snapshot is a copy of one critter's components.
type Snapshot struct {
	ID      uint32
	Pose    components.Pose
	Radar   components.Radar
	Command components.Command
	Sight   components.Sight
	Memory  components.Memory
	Status  components.Status
}

// Critters returns a snapshot of every critter in spawn order.
func (g *Game) Critters() []Snapshot {
	out := make([]Snapshot, 0, len(g.critters))
	for _, e := range g.critters {
		out = append(out, g.snapshot(e))
	}
	return out
}

// Critter returns a snapshot of the i-th critter.
func (g *Game) Critter(i int) Snapshot {
	return g.snapshot(g.critters[i])
}

func (g *Game) snapshot(e ecs.Entity) Snapshot {
	critter, pose, radar, cmd, sight, mem, status := g.critterMap.Get(e)
	return Snapshot{
		ID:      critter.ID,
		Pose:    *pose,
		Radar:   *radar,
		Command: *cmd,
		Sight:   *sight,
		Memory:  *mem,
		Status:  *status,
	}
}

// SetPose moves the i-th critter. Used by scripted scenarios.
func (g *Game) SetPose(i int, p components.Pose) {
	_, pose, _, _, _, _, _ := g.critterMap.Get(g.critters[i])
	*pose = p
}

// Grid returns the static world map.
func (g *Game) Grid() *systems.Grid {
	return g.grid
}

// Target returns the stop target pattern.
func (g *Game) Target() systems.Target {
	return g.target
}

// Tick returns the number of ticks simulated so far.
func (g *Game) Tick() int64 {
	return g.tick
}

// SimTime returns the simulated time in seconds.
func (g *Game) SimTime() float64 {
	return float64(g.tick) * g.cfg.Simulation.DT
}

// MaxTicks returns the tick limit of Run (0 = unlimited).
func (g *Game) MaxTicks() int64 {
	return g.maxTicks
}

// AllDone reports whether every critter has reached the target.
func (g *Game) AllDone() bool {
	return len(g.critters) > 0 && g.doneCount == len(g.critters)
}

// Unload flushes and closes run output.
func (g *Game) Unload() {
	if len(g.traceBuf) > 0 {
		g.writeTrace()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
