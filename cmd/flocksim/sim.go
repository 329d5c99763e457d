package main

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/kernels"
	"github.com/pthm-cable/flock/telemetry"
)

// Sim owns the agent population and drives the kernel pipeline. Agents
// live in an ECS world; each tick their components are gathered into
// flat interleaved buffers, transformed by the kernels in the canonical
// order (reset, forces, integrate, boundary, distances), and scattered
// back.
type Sim struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand

	mapper *ecs.Map3[components.Position, components.Velocity, components.Acceleration]
	filter *ecs.Filter3[components.Position, components.Velocity, components.Acceleration]

	// Individual component mappers for scatter lookups
	posMap *ecs.Map1[components.Position]
	velMap *ecs.Map1[components.Velocity]
	accMap *ecs.Map1[components.Acceleration]

	// Flat kernel buffers, reused across ticks
	entities      []ecs.Entity
	positions     []float32
	velocities    []float32
	accelerations []float32
	nearest       []float32

	perf   *telemetry.PerfCollector
	output *telemetry.OutputManager

	tick          int32
	windowStart   int32
	spawned       int
	despawned     int
	edgeCrossings int
	logStats      bool
}

// NewSim creates a simulation with the initial population spawned.
func NewSim(cfg *config.Config, seed int64, output *telemetry.OutputManager, logStats bool) *Sim {
	world := ecs.NewWorld()

	s := &Sim{
		cfg:      cfg,
		world:    world,
		rng:      rand.New(rand.NewSource(seed)),
		mapper:   ecs.NewMap3[components.Position, components.Velocity, components.Acceleration](world),
		filter:   ecs.NewFilter3[components.Position, components.Velocity, components.Acceleration](world),
		posMap:   ecs.NewMap1[components.Position](world),
		velMap:   ecs.NewMap1[components.Velocity](world),
		accMap:   ecs.NewMap1[components.Acceleration](world),
		perf:     telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:   output,
		logStats: logStats,
	}

	for i := 0; i < cfg.Population.Initial; i++ {
		s.spawnAgent()
	}
	s.spawned = 0 // initial population does not count as window churn

	return s
}

// Tick returns the current tick number.
func (s *Sim) Tick() int32 {
	return s.tick
}

// spawnAgent creates one agent at a random position with a random
// sub-maximum velocity.
func (s *Sim) spawnAgent() {
	heading := s.rng.Float64() * 2 * math.Pi
	speed := s.cfg.Derived.MaxSpeed32 * 0.25

	pos := components.Position{
		X: s.rng.Float32() * s.cfg.Derived.WorldW32,
		Y: s.rng.Float32() * s.cfg.Derived.WorldH32,
	}
	vel := components.Velocity{
		X: float32(math.Cos(heading)) * speed,
		Y: float32(math.Sin(heading)) * speed,
	}
	acc := components.Acceleration{}

	s.mapper.NewEntity(&pos, &vel, &acc)
	s.spawned++
}

// Step runs one simulation tick.
func (s *Sim) Step() {
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseGather)
	s.gather()

	s.perf.StartPhase(telemetry.PhaseReset)
	kernels.ResetAccelerationsAll(s.accelerations)

	s.perf.StartPhase(telemetry.PhaseForces)
	for _, f := range s.cfg.Forces {
		kernels.AddForceAll(s.accelerations, float32(f.X), float32(f.Y))
	}

	s.perf.StartPhase(telemetry.PhaseIntegrate)
	kernels.IntegrateAllParallel(
		s.positions, s.velocities, s.accelerations,
		s.cfg.Derived.DT32, s.cfg.Derived.MinSpeed32, s.cfg.Derived.MaxSpeed32, s.cfg.Derived.Drag32,
	)

	s.perf.StartPhase(telemetry.PhaseBounds)
	s.applyBoundary()

	s.perf.StartPhase(telemetry.PhaseDistances)
	kernels.ComputeDistancesBatch(s.positions, s.cfg.Derived.TargetsFlat, s.nearest)

	s.perf.StartPhase(telemetry.PhaseScatter)
	s.scatter()

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.churn()
	s.tick++
	s.flushWindowIfDue()

	s.perf.EndTick()
}

// gather snapshots ECS components into the flat kernel buffers.
func (s *Sim) gather() {
	s.entities = s.entities[:0]
	s.positions = s.positions[:0]
	s.velocities = s.velocities[:0]
	s.accelerations = s.accelerations[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, vel, acc := query.Get()
		s.entities = append(s.entities, query.Entity())
		s.positions = append(s.positions, pos.X, pos.Y)
		s.velocities = append(s.velocities, vel.X, vel.Y)
		s.accelerations = append(s.accelerations, acc.X, acc.Y)
	}

	if cap(s.nearest) < len(s.entities) {
		s.nearest = make([]float32, len(s.entities))
	}
	s.nearest = s.nearest[:len(s.entities)]
}

// scatter writes kernel results back to the ECS components.
func (s *Sim) scatter() {
	for i, e := range s.entities {
		pos := s.posMap.Get(e)
		vel := s.velMap.Get(e)
		acc := s.accMap.Get(e)
		if pos == nil || vel == nil || acc == nil {
			continue
		}

		idx := 2 * i
		pos.X, pos.Y = s.positions[idx], s.positions[idx+1]
		vel.X, vel.Y = s.velocities[idx], s.velocities[idx+1]
		acc.X, acc.Y = s.accelerations[idx], s.accelerations[idx+1]
	}
}

// applyBoundary counts agents outside the world, then applies the
// configured edge policy.
func (s *Sim) applyBoundary() {
	w, h := s.cfg.Derived.WorldW32, s.cfg.Derived.WorldH32

	for i := 0; i < len(s.positions)-1; i += 2 {
		if s.positions[i] < 0 || s.positions[i] >= w || s.positions[i+1] < 0 || s.positions[i+1] >= h {
			s.edgeCrossings++
		}
	}

	if s.cfg.World.Boundary == config.BoundaryBounce {
		kernels.BouncePositionsAll(s.positions, s.velocities, w, h)
	} else {
		kernels.WrapPositionsAll(s.positions, w, h)
	}
}

// churn randomly spawns and despawns agents within the configured
// population band, exercising the kernels' ragged-buffer tolerance
// across population transitions.
func (s *Sim) churn() {
	n := len(s.entities)

	if n < s.cfg.Population.Max && s.rng.Float64() < s.cfg.Population.ChurnChance {
		s.spawnAgent()
	}
	if n > s.cfg.Population.Min && s.rng.Float64() < s.cfg.Population.ChurnChance {
		victim := s.entities[s.rng.Intn(n)]
		s.mapper.Remove(victim)
		s.despawned++
	}
}

// flushWindowIfDue emits window telemetry when the stats window elapses.
func (s *Sim) flushWindowIfDue() {
	windowTicks := int32(s.cfg.Telemetry.StatsWindow / s.cfg.Physics.DT)
	if windowTicks < 1 {
		windowTicks = 1
	}
	if s.tick-s.windowStart < windowTicks {
		return
	}

	stats := telemetry.CollectWindow(
		s.windowStart, s.tick, float64(s.tick)*s.cfg.Physics.DT,
		s.velocities, s.nearest,
		s.spawned, s.despawned, s.edgeCrossings,
	)
	perfStats := s.perf.Stats()

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}
	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Warn("failed to write telemetry", "error", err)
	}
	if err := s.output.WritePerf(perfStats, s.tick); err != nil {
		slog.Warn("failed to write perf", "error", err)
	}

	s.windowStart = s.tick
	s.spawned = 0
	s.despawned = 0
	s.edgeCrossings = 0
}
