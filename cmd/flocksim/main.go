// Command flocksim is a headless reference host for the physics kernels:
// it owns the agent population, composes the kernels into a per-tick
// pipeline, and emits window telemetry.
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/kernels"
	"github.com/pthm-cable/flock/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster runs)")

	flag.Parse()

	// One-time kernel setup, as a WASM host would do at module load
	kernels.Init()
	if !kernels.SIMDSupported() {
		slog.Error("physics kernels did not load")
		os.Exit(1)
	}

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()

	if err := output.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	sim := NewSim(cfg, rngSeed, output, *logStats)

	slog.Info("starting simulation",
		"seed", rngSeed,
		"agents", cfg.Population.Initial,
		"boundary", cfg.World.Boundary,
		"targets", len(cfg.Targets),
		"max_ticks", *maxTicks,
		"steps_per_update", *stepsPerUpdate,
	)

	for {
		for i := 0; i < *stepsPerUpdate; i++ {
			sim.Step()
		}

		if *maxTicks > 0 && int(sim.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", sim.Tick())
			return
		}
	}
}
