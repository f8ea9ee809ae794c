package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pthm-cable/critter/config"
	"github.com/pthm-cable/critter/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	profile := flag.String("profile", config.DefaultProfile, "Behaviour profile: "+strings.Join(config.Profiles(), ", "))
	mapFile := flag.String("map", "", "Path to a text map (overrides world.map)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	duration := flag.Float64("duration", -1, "Simulated seconds (0 = unlimited, -1 = use config)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = use duration)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	stopOnDone := flag.Bool("stop-on-done", false, "End the run once every critter reaches the target")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	traceEvery := flag.Int("trace-every", -1, "Ticks between trace rows (0 = off, -1 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath, *profile); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *mapFile != "" {
		cfg.World.MapFile = *mapFile
	}
	if *duration >= 0 {
		cfg.Simulation.Duration = *duration
	}
	if *stopOnDone {
		cfg.Simulation.StopOnDone = true
	}
	if *traceEvery >= 0 {
		cfg.Telemetry.TraceEvery = *traceEvery
	}
	if err := cfg.Finalize(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	g, err := game.NewGame(game.Options{
		Seed:      rngSeed,
		Config:    cfg,
		MaxTicks:  *maxTicks,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"profile", cfg.Derived.Profile,
		"critters", len(cfg.World.Starts),
		"map", fmt.Sprintf("%dx%d", g.Grid().Width(), g.Grid().Height()),
		"target", g.Target().String(),
		"max_ticks", g.MaxTicks(),
		"output_dir", *outputDir,
	)

	start := time.Now()
	res := g.Run(ctx)

	for _, c := range res.Critters {
		slog.Info("critter result",
			"critter", c.ID,
			"seen", c.Seen.String(),
			"done", c.Done,
			"done_tick", c.DoneTick,
			"done_time", c.DoneTime,
		)
	}
	slog.Info("simulation finished",
		"ticks", res.Ticks,
		"sim_time", res.SimTime,
		"all_done", res.AllDone,
		"cancelled", res.Cancelled,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
}
