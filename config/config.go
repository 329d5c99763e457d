// Package config provides configuration loading and access for the
// simulation host.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Boundary policies for world edges.
const (
	BoundaryWrap   = "wrap"
	BoundaryBounce = "bounce"
)

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Population PopulationConfig `yaml:"population"`
	Forces     []ForceConfig    `yaml:"forces"`
	Targets    []TargetConfig   `yaml:"targets"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds world dimensions and the edge policy.
type WorldConfig struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Boundary string `yaml:"boundary"` // "wrap" or "bounce"
}

// PhysicsConfig holds the scalar parameters fed to the kernels each tick.
type PhysicsConfig struct {
	DT       float64 `yaml:"dt"`
	MinSpeed float64 `yaml:"min_speed"`
	MaxSpeed float64 `yaml:"max_speed"`
	Drag     float64 `yaml:"drag"` // damping coefficient in [0,1]
}

// PopulationConfig holds agent population parameters.
type PopulationConfig struct {
	Initial     int     `yaml:"initial"`
	Min         int     `yaml:"min"`
	Max         int     `yaml:"max"`
	ChurnChance float64 `yaml:"churn_chance"` // per-tick spawn/despawn probability
}

// ForceConfig is one uniform force layer accumulated per tick.
type ForceConfig struct {
	Name string  `yaml:"name"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// TargetConfig is one fixed point of interest for the nearest-distance scan.
type TargetConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32        float32   // Physics.DT as float32
	WorldW32    float32   // World.Width as float32
	WorldH32    float32   // World.Height as float32
	MinSpeed32  float32   // Physics.MinSpeed as float32
	MaxSpeed32  float32   // Physics.MaxSpeed as float32
	Drag32      float32   // Physics.Drag as float32
	TargetsFlat []float32 // Targets as an interleaved x/y buffer
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the kernels have no defined behavior for.
func (c *Config) validate() error {
	switch c.World.Boundary {
	case "":
		c.World.Boundary = BoundaryWrap
	case BoundaryWrap, BoundaryBounce:
	default:
		return fmt.Errorf("unknown boundary policy %q (want %q or %q)", c.World.Boundary, BoundaryWrap, BoundaryBounce)
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT)
	}
	if c.Physics.MinSpeed > c.Physics.MaxSpeed {
		return fmt.Errorf("physics.min_speed %v exceeds max_speed %v", c.Physics.MinSpeed, c.Physics.MaxSpeed)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.WorldW32 = float32(c.World.Width)
	c.Derived.WorldH32 = float32(c.World.Height)
	c.Derived.MinSpeed32 = float32(c.Physics.MinSpeed)
	c.Derived.MaxSpeed32 = float32(c.Physics.MaxSpeed)
	c.Derived.Drag32 = float32(c.Physics.Drag)

	c.Derived.TargetsFlat = make([]float32, 0, 2*len(c.Targets))
	for _, t := range c.Targets {
		c.Derived.TargetsFlat = append(c.Derived.TargetsFlat, float32(t.X), float32(t.Y))
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
