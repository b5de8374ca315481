// pkg/config/templates.go
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-gravitywell/pkg/gravity"
)

// SystemTemplate is a named planet and spawn layout
type SystemTemplate struct {
	Name      string
	WorldSize float64
	Planets   []PlanetConfig
	Spawns    []SpawnConfig
}

var systemTemplates = map[string]*SystemTemplate{
	"single_planet": {
		Name:      "Single Planet",
		WorldSize: 100000,
		Planets: []PlanetConfig{
			{Name: "Terra", SurfaceRadius: 5000, FieldRadius: 15000, Strength: gravity.DefaultStrength},
		},
		Spawns: []SpawnConfig{
			{Kind: "spaceship", Name: "Lander", Position: mgl64.Vec3{0, 0, 5800}, Possess: true},
			{Kind: "character", Name: "Pilot", Position: mgl64.Vec3{8000, 0, 0}},
		},
	},
	"binary_planets": {
		Name:      "Binary Planets",
		WorldSize: 200000,
		Planets: []PlanetConfig{
			{Name: "Castor", Position: mgl64.Vec3{-20000, 0, 0}, SurfaceRadius: 6000, FieldRadius: 18000, Strength: gravity.DefaultStrength},
			{Name: "Pollux", Position: mgl64.Vec3{20000, 0, 0}, SurfaceRadius: 3000, FieldRadius: 12000, Strength: gravity.DefaultStrength * 0.5},
		},
		Spawns: []SpawnConfig{
			{Kind: "spaceship", Name: "Shuttle", Position: mgl64.Vec3{0, 0, 2000}, Possess: true},
			{Kind: "prop", Name: "Probe", Position: mgl64.Vec3{0, 5000, 0}, Radius: 30, Mass: 50},
		},
	},
	"asteroid_belt": {
		Name:      "Asteroid Belt",
		WorldSize: 150000,
		Planets: []PlanetConfig{
			{Name: "Ceres", SurfaceRadius: 2000, FieldRadius: 20000, Strength: gravity.DefaultStrength * 0.3},
		},
		Spawns: []SpawnConfig{
			{Kind: "character", Name: "Miner", Position: mgl64.Vec3{0, 0, 9000}, Possess: true},
			{Kind: "prop", Name: "Rock-1", Position: mgl64.Vec3{6000, 0, 0}, Radius: 120, Mass: 5000},
			{Kind: "prop", Name: "Rock-2", Position: mgl64.Vec3{-4000, 5000, 0}, Radius: 80, Mass: 2500},
			{Kind: "prop", Name: "Rock-3", Position: mgl64.Vec3{0, -7000, 3000}, Radius: 60, Mass: 1200},
		},
	},
}

// GetSystemTemplate returns a built-in template or nil
func GetSystemTemplate(name string) *SystemTemplate {
	return systemTemplates[name]
}

// ListSystemTemplates returns the built-in templates by key
func ListSystemTemplates() map[string]*SystemTemplate {
	out := make(map[string]*SystemTemplate, len(systemTemplates))
	for k, v := range systemTemplates {
		out[k] = v
	}
	return out
}

// ApplySystemTemplate replaces the world layout of config with a template.
// Tuning and simulation settings are kept.
func ApplySystemTemplate(config *TuningConfig, name string) error {
	template := GetSystemTemplate(name)
	if template == nil {
		return fmt.Errorf("unknown system template %q", name)
	}

	config.WorldSize = template.WorldSize
	config.Planets = append([]PlanetConfig(nil), template.Planets...)
	config.Spawns = append([]SpawnConfig(nil), template.Spawns...)
	return nil
}

// LoadConfigWithTemplate loads path, falling back to the defaults when the
// file does not exist, then applies the named template.
func LoadConfigWithTemplate(path, template string) (*TuningConfig, error) {
	config, err := LoadConfig(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		config = DefaultConfig()
	}

	if template != "" {
		if err := ApplySystemTemplate(config, template); err != nil {
			return nil, err
		}
	}
	return config, nil
}
