// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-gravitywell/pkg/flight"
	"github.com/opd-ai/go-gravitywell/pkg/gravity"
	"github.com/opd-ai/go-gravitywell/pkg/physics"
	"github.com/opd-ai/go-gravitywell/pkg/validation"
)

// ErrInvalidConfig is wrapped by every Validate failure
var ErrInvalidConfig = errors.New("invalid config")

// TuningConfig contains everything needed to build and run a world
type TuningConfig struct {
	WorldSize  float64          `yaml:"world_size"`
	Simulation SimulationConfig `yaml:"simulation"`
	Profiles   ProfilesConfig   `yaml:"profiles"`
	Planets    []PlanetConfig   `yaml:"planets"`
	Spawns     []SpawnConfig    `yaml:"spawns"`
}

// SimulationConfig controls the fixed-step run loop
type SimulationConfig struct {
	DeltaTime      float64 `yaml:"dt"`
	Ticks          int     `yaml:"ticks"`
	RealTime       bool    `yaml:"real_time"`
	Scenario       string  `yaml:"scenario,omitempty"`
	ReportInterval int     `yaml:"report_interval"`
}

// ProfilesConfig holds the tuning of each flyer kind
type ProfilesConfig struct {
	Character flight.Profile `yaml:"character"`
	Spaceship flight.Profile `yaml:"spaceship"`
}

// PlanetConfig contains configuration for a planet
type PlanetConfig struct {
	Name          string     `yaml:"name"`
	Position      mgl64.Vec3 `yaml:"position,flow"`
	SurfaceRadius float64    `yaml:"surface_radius"`
	FieldRadius   float64    `yaml:"field_radius"`
	Strength      float64    `yaml:"strength"`
}

// SpawnConfig places one flyer or prop in the world
type SpawnConfig struct {
	Kind     string          `yaml:"kind"`
	Name     string          `yaml:"name"`
	Position mgl64.Vec3      `yaml:"position,flow"`
	Rotation physics.Rotator `yaml:"rotation,omitempty"`
	Possess  bool            `yaml:"possess,omitempty"`
	Radius   float64         `yaml:"radius,omitempty"`
	Mass     float64         `yaml:"mass,omitempty"`
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*TuningConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ParseConfig decodes YAML on top of the defaults, so omitted sections keep
// their default values.
func ParseConfig(data []byte) (*TuningConfig, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *TuningConfig, path string) error {
	if config == nil {
		return errors.New("failed to marshal config: nil config")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a single planet with a parked spaceship and a
// character in orbit.
func DefaultConfig() *TuningConfig {
	return &TuningConfig{
		WorldSize: 100000,
		Simulation: SimulationConfig{
			DeltaTime:      1.0 / 60,
			Ticks:          600,
			Scenario:       "descend",
			ReportInterval: 60,
		},
		Profiles: ProfilesConfig{
			Character: flight.CharacterProfile(),
			Spaceship: flight.SpaceshipProfile(),
		},
		Planets: []PlanetConfig{
			{
				Name:          "Terra",
				Position:      mgl64.Vec3{0, 0, 0},
				SurfaceRadius: 5000,
				FieldRadius:   15000,
				Strength:      gravity.DefaultStrength,
			},
		},
		Spawns: []SpawnConfig{
			{
				Kind:     "spaceship",
				Name:     "Lander",
				Position: mgl64.Vec3{0, 0, 5800},
				Possess:  true,
			},
			{
				Kind:     "character",
				Name:     "Pilot",
				Position: mgl64.Vec3{8000, 0, 0},
			},
			{
				Kind:     "prop",
				Name:     "Cargo",
				Position: mgl64.Vec3{0, 7000, 0},
				Radius:   40,
				Mass:     200,
			},
		},
	}
}

// Validate checks the configuration for values the simulation cannot use.
func (c *TuningConfig) Validate() error {
	if c.WorldSize <= 0 {
		return fmt.Errorf("%w: world_size must be positive, got %v", ErrInvalidConfig, c.WorldSize)
	}
	if c.Simulation.DeltaTime <= 0 {
		return fmt.Errorf("%w: simulation.dt must be positive, got %v", ErrInvalidConfig, c.Simulation.DeltaTime)
	}
	if c.Simulation.Ticks < 0 {
		return fmt.Errorf("%w: simulation.ticks must not be negative, got %d", ErrInvalidConfig, c.Simulation.Ticks)
	}

	if err := validateProfile("profiles.character", c.Profiles.Character); err != nil {
		return err
	}
	if err := validateProfile("profiles.spaceship", c.Profiles.Spaceship); err != nil {
		return err
	}

	names := make(map[string]bool)
	for i, p := range c.Planets {
		if p.SurfaceRadius <= 0 {
			return fmt.Errorf("%w: planets[%d] surface_radius must be positive", ErrInvalidConfig, i)
		}
		if p.FieldRadius < p.SurfaceRadius {
			return fmt.Errorf("%w: planets[%d] field_radius must cover the surface", ErrInvalidConfig, i)
		}
		if p.Strength < 0 {
			return fmt.Errorf("%w: planets[%d] strength must not be negative", ErrInvalidConfig, i)
		}
		if err := checkName(names, "planets", i, p.Name); err != nil {
			return err
		}
	}

	for i, s := range c.Spawns {
		switch s.Kind {
		case "character", "spaceship", "ship":
		case "prop":
			if s.Radius <= 0 || s.Mass <= 0 {
				return fmt.Errorf("%w: spawns[%d] prop needs positive radius and mass", ErrInvalidConfig, i)
			}
		default:
			return fmt.Errorf("%w: spawns[%d] unknown kind %q", ErrInvalidConfig, i, s.Kind)
		}
		if err := checkName(names, "spawns", i, s.Name); err != nil {
			return err
		}
	}

	return nil
}

func validateProfile(field string, p flight.Profile) error {
	if p.ThrustScale < 0 || p.MaxSpeed < 0 || p.Deceleration < 0 {
		return fmt.Errorf("%w: %s thrust, max speed and deceleration must not be negative", ErrInvalidConfig, field)
	}
	if p.MaxRollVelocity <= 0 {
		return fmt.Errorf("%w: %s max_roll_velocity must be positive", ErrInvalidConfig, field)
	}
	if p.Landing != nil && (p.Landing.ProbeDistance <= 0 || p.Landing.MaxLandingSpeed <= 0) {
		return fmt.Errorf("%w: %s landing probe distance and speed must be positive", ErrInvalidConfig, field)
	}
	return nil
}

func checkName(seen map[string]bool, section string, i int, name string) error {
	if _, err := validation.ValidateEntityName(name); err != nil {
		return fmt.Errorf("%w: %s[%d]: %v", ErrInvalidConfig, section, i, err)
	}
	if seen[name] {
		return fmt.Errorf("%w: %s[%d] duplicate name %q", ErrInvalidConfig, section, i, name)
	}
	seen[name] = true
	return nil
}
