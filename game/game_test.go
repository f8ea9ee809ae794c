package game

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/critter/components"
	"github.com/pthm-cable/critter/config"
	"github.com/pthm-cable/critter/telemetry"
)

// testConfig loads the defaults, applies mutate and re-finalizes.
func testConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg, err := config.Load("", "")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return cfg
}

func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	g, err := NewGame(opts)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

// stationary disables movement and noise so poses can be scripted.
func stationary(cfg *config.Config) {
	cfg.Movement.MaxSpeed = 0
	cfg.Movement.MaxRotate = 0
	cfg.Noise.Kind = "none"
}

func cellPose(x, y int) components.Pose {
	return components.Pose{X: float64(x) + 0.5, Y: float64(y) + 0.5}
}

func TestScriptedTourReachesTarget(t *testing.T) {
	cfg := testConfig(t, stationary)

	var events []telemetry.Event
	g := newTestGame(t, Options{
		Seed:          1,
		Config:        cfg,
		EventCallback: func(e telemetry.Event) { events = append(events, e) },
	})

	// Sample map: G(1,4) R(5,4) B(3,3) M(3,1) Y(3,4)
	tour := []struct {
		name     string
		x, y     int
		wantSeen string
		wantDone bool
	}{
		{"green", 1, 4, "G", false},
		{"red", 5, 4, "GR", false},
		{"blue", 3, 3, "GRB", false},
		{"magenta", 3, 1, "GRBM", true},
		{"yellow", 3, 4, "GRBMY", true},
	}

	for _, step := range tour {
		g.SetPose(0, cellPose(step.x, step.y))
		g.Step()
		s := g.Critter(0)
		if got := s.Memory.Seen.String(); got != step.wantSeen {
			t.Errorf("after %s: seen = %q, want %q", step.name, got, step.wantSeen)
		}
		if s.Status.Done != step.wantDone {
			t.Errorf("after %s: done = %v, want %v", step.name, s.Status.Done, step.wantDone)
		}
	}

	s := g.Critter(0)
	if s.Status.DoneTick != 4 {
		t.Errorf("DoneTick = %d, want 4", s.Status.DoneTick)
	}

	var latched, reached int
	for _, e := range events {
		switch e.Type {
		case telemetry.EventColorLatched:
			latched++
		case telemetry.EventTargetReached:
			reached++
		}
	}
	if latched != 5 || reached != 1 {
		t.Errorf("events: %d latched, %d reached; want 5 and 1", latched, reached)
	}
}

func TestMemoryAndDoneAreMonotone(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Stop.ColorsToFind = 2
	})
	g := newTestGame(t, Options{Seed: 7, Config: cfg, MaxTicks: 20000})

	prev := g.Critter(0)
	maxDist := cfg.Sensors.MaxDistance
	for g.Tick() < g.MaxTicks() {
		g.Step()
		s := g.Critter(0)

		if !s.Memory.Seen.Contains(prev.Memory.Seen) {
			t.Fatalf("tick %d: seen %s lost flags from %s", g.Tick(), s.Memory.Seen, prev.Memory.Seen)
		}
		if prev.Status.Done && !s.Status.Done {
			t.Fatalf("tick %d: done reverted", g.Tick())
		}
		for _, d := range []float64{s.Radar.Left, s.Radar.Forward, s.Radar.Right} {
			if d < 0 || d > maxDist {
				t.Fatalf("tick %d: sensor reading %v outside [0, %v]", g.Tick(), d, maxDist)
			}
		}
		if g.Grid().IsWall(s.Pose.Cell()) {
			t.Fatalf("tick %d: critter inside a wall at (%v, %v)", g.Tick(), s.Pose.X, s.Pose.Y)
		}
		prev = s
	}
}

func TestDoneInhibitsMovement(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Stop.ColorsToFind = 1
		c.World.Starts = []config.StartConfig{{X: 1, Y: 4, Dir: 0}} // on the green cell
	})
	g := newTestGame(t, Options{Seed: 3, Config: cfg})

	g.Step()
	s := g.Critter(0)
	if !s.Status.Done {
		t.Fatalf("critter should be done after a tick on green, seen %s", s.Memory.Seen)
	}
	pose := s.Pose

	for i := 0; i < 1000; i++ {
		g.Step()
		s = g.Critter(0)
		if s.Command.Speed != 0 || s.Command.Rotation != 0 {
			t.Fatalf("tick %d: command %+v, want zero", g.Tick(), s.Command)
		}
	}
	if s.Pose != pose {
		t.Errorf("pose moved while inhibited: %+v -> %+v", pose, s.Pose)
	}
}

func TestWallAvoidanceNearCorner(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Noise.Kind = "none"
	})
	g := newTestGame(t, Options{Seed: 1, Config: cfg})

	// Facing south, just above the bottom wall and next to the west wall.
	g.SetPose(0, components.Pose{X: 1.01, Y: 4.95, Heading: math.Pi})
	g.Step()
	s := g.Critter(0)

	if s.Radar.Right >= s.Radar.Left {
		t.Errorf("right reading %v should be shorter than left %v", s.Radar.Right, s.Radar.Left)
	}
	if s.Command.Rotation >= 0 {
		t.Errorf("rotation = %v, want negative (away from the west wall)", s.Command.Rotation)
	}
	if math.Abs(s.Command.Speed-0.0125) > 1e-3 {
		t.Errorf("speed = %v, want about 0.0125", s.Command.Speed)
	}
	if s.Command.Explore {
		t.Error("no exploration expected without noise")
	}
}

func TestHeadOnWallTurnsAway(t *testing.T) {
	for _, profile := range []string{"critter", "avoid", "threshold"} {
		t.Run(profile, func(t *testing.T) {
			cfg, err := config.Load("", profile)
			if err != nil {
				t.Fatalf("config.Load: %v", err)
			}
			cfg.Noise.Kind = "none"
			if err := cfg.Finalize(); err != nil {
				t.Fatalf("Finalize: %v", err)
			}
			g := newTestGame(t, Options{Seed: 1, Config: cfg})

			// Touching the north wall, facing it squarely.
			start := components.Pose{X: 2.5, Y: 1.0, Heading: 0}
			g.SetPose(0, start)
			g.Step()
			s := g.Critter(0)
			if s.Command.Rotation <= 0 {
				t.Errorf("rotation = %v, want clockwise turn", s.Command.Rotation)
			}
			if s.Command.Speed > 0 {
				t.Errorf("speed = %v, want no forward motion into the wall", s.Command.Speed)
			}

			for i := 0; i < 200; i++ {
				g.Step()
			}
			s = g.Critter(0)
			if s.Pose.Heading == 0 {
				t.Error("heading never left the wall")
			}
			if profile == "critter" && s.Pose.X == start.X && s.Pose.Y == start.Y {
				t.Error("critter stayed stuck at the wall")
			}
		})
	}
}

func TestDeterministicForSeed(t *testing.T) {
	run := func() []Snapshot {
		g := newTestGame(t, Options{Seed: 42, Config: testConfig(t, nil), MaxTicks: 5000})
		g.Run(context.Background())
		return g.Critters()
	}
	a, b := run(), run()
	if a[0].Pose != b[0].Pose || a[0].Memory != b[0].Memory {
		t.Errorf("runs with the same seed differ: %+v vs %+v", a[0], b[0])
	}
}

func TestMultipleCritters(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.World.Starts = []config.StartConfig{{X: 1, Y: 2, Dir: 2}, {X: 5, Y: 2, Dir: 2}}
	})
	g := newTestGame(t, Options{Seed: 5, Config: cfg, MaxTicks: 2000})
	res := g.Run(context.Background())

	if len(res.Critters) != 2 {
		t.Fatalf("got %d critters, want 2", len(res.Critters))
	}
	for i, c := range res.Critters {
		if c.ID != uint32(i) {
			t.Errorf("critter %d has ID %d", i, c.ID)
		}
	}
	if g.Critter(0).Pose == g.Critter(1).Pose {
		t.Error("critters from different starts ended at the same pose")
	}
}

func TestRunStopsOnDone(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Simulation.StopOnDone = true
		c.Stop.ColorsToFind = 1
		c.World.Starts = []config.StartConfig{{X: 1, Y: 4, Dir: 0}}
	})
	g := newTestGame(t, Options{Seed: 1, Config: cfg})
	res := g.Run(context.Background())

	if !res.AllDone || res.Ticks != 1 {
		t.Errorf("Run = %+v, want done after 1 tick", res)
	}
	if res.Critters[0].DoneTick != 1 {
		t.Errorf("DoneTick = %d, want 1", res.Critters[0].DoneTick)
	}
}

func TestRunCancelled(t *testing.T) {
	g := newTestGame(t, Options{Seed: 1, Config: testConfig(t, nil)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := g.Run(ctx)
	if !res.Cancelled || res.Ticks != 0 {
		t.Errorf("Run = %+v, want cancelled before the first tick", res)
	}
}

func TestNewGameRejectsBadStarts(t *testing.T) {
	tests := []struct {
		name  string
		start config.StartConfig
	}{
		{"wall", config.StartConfig{X: 0, Y: 0}},
		{"out of bounds", config.StartConfig{X: 10, Y: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, func(c *config.Config) {
				c.World.Starts = []config.StartConfig{tt.start}
			})
			if _, err := NewGame(Options{Config: cfg}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestOutputFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, func(c *config.Config) {
		c.Telemetry.StatsWindow = 0.1
		c.Telemetry.TraceEvery = 50
	})

	var windows int
	g, err := NewGame(Options{
		Seed:          9,
		Config:        cfg,
		MaxTicks:      1000,
		OutputDir:     dir,
		StatsCallback: func(telemetry.WindowStats) { windows++ },
	})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	g.Run(context.Background())
	g.Unload()

	if windows != 10 {
		t.Errorf("got %d stats windows, want 10", windows)
	}
	for _, name := range []string{"trace.csv", "events.csv", "telemetry.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml"), ""); err != nil {
		t.Errorf("config snapshot does not load: %v", err)
	}
}
