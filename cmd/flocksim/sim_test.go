package main

import (
	"testing"

	"github.com/pthm-cable/flock/config"
)

func testConfig(t *testing.T, boundary string) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.World.Boundary = boundary
	cfg.Population.Initial = 32
	cfg.Population.Min = 8
	cfg.Population.Max = 64
	return cfg
}

func TestSimStepKeepsAgentsInWorld(t *testing.T) {
	for _, boundary := range []string{config.BoundaryWrap, config.BoundaryBounce} {
		t.Run(boundary, func(t *testing.T) {
			cfg := testConfig(t, boundary)
			sim := NewSim(cfg, 42, nil, false)

			for i := 0; i < 200; i++ {
				sim.Step()
			}

			w, h := cfg.Derived.WorldW32, cfg.Derived.WorldH32
			for i := 0; i < len(sim.positions); i += 2 {
				x, y := sim.positions[i], sim.positions[i+1]
				if x < 0 || x >= w || y < 0 || y >= h {
					t.Fatalf("agent %d escaped the world: (%v, %v)", i/2, x, y)
				}
			}
		})
	}
}

func TestSimPopulationStableWithoutChurn(t *testing.T) {
	cfg := testConfig(t, config.BoundaryWrap)
	cfg.Population.ChurnChance = 0
	sim := NewSim(cfg, 1, nil, false)

	for i := 0; i < 50; i++ {
		sim.Step()
	}

	if got := len(sim.entities); got != cfg.Population.Initial {
		t.Errorf("population = %d, want %d", got, cfg.Population.Initial)
	}
}

func TestSimChurnRespectsPopulationBand(t *testing.T) {
	cfg := testConfig(t, config.BoundaryWrap)
	cfg.Population.ChurnChance = 1 // spawn and despawn every tick
	sim := NewSim(cfg, 7, nil, false)

	for i := 0; i < 300; i++ {
		sim.Step()
	}

	n := len(sim.entities)
	if n < cfg.Population.Min || n > cfg.Population.Max+1 {
		t.Errorf("population %d outside [%d, %d]", n, cfg.Population.Min, cfg.Population.Max)
	}
}

func TestSimGatherScatterRoundTrip(t *testing.T) {
	cfg := testConfig(t, config.BoundaryWrap)
	cfg.Population.ChurnChance = 0
	sim := NewSim(cfg, 3, nil, false)

	sim.Step()

	// After a step the flat buffers and the ECS components agree.
	sim.gather()
	query := sim.filter.Query()
	i := 0
	for query.Next() {
		pos, vel, _ := query.Get()
		if pos.X != sim.positions[2*i] || pos.Y != sim.positions[2*i+1] {
			t.Fatalf("agent %d position out of sync", i)
		}
		if vel.X != sim.velocities[2*i] || vel.Y != sim.velocities[2*i+1] {
			t.Fatalf("agent %d velocity out of sync", i)
		}
		i++
	}
	if i != cfg.Population.Initial {
		t.Errorf("iterated %d agents, want %d", i, cfg.Population.Initial)
	}
}

func TestSimNearestDistancesPopulated(t *testing.T) {
	cfg := testConfig(t, config.BoundaryWrap)
	cfg.Population.ChurnChance = 0
	sim := NewSim(cfg, 9, nil, false)

	sim.Step()

	if len(sim.nearest) != len(sim.entities) {
		t.Fatalf("nearest has %d slots for %d agents", len(sim.nearest), len(sim.entities))
	}
	maxDistSq := cfg.Derived.WorldW32*cfg.Derived.WorldW32 + cfg.Derived.WorldH32*cfg.Derived.WorldH32
	for i, d := range sim.nearest {
		if d < 0 || d > maxDistSq {
			t.Errorf("nearest[%d] = %v, outside [0, %v]", i, d, maxDistSq)
		}
	}
}
