// Package scenario drives flyers from Tengo scripts. A script runs once per
// tick: it reads the observation globals and assigns the command globals,
// which are turned into flight input events.
//
// Observation globals: tick, time, dt, speed, altitude, landed.
// Command globals: look_x, look_y, roll, thrust_x, thrust_y, thrust_z.
// Scripts assign commands with "=", never ":=". A map named memory keeps
// its contents between ticks.
package scenario

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-gravitywell/pkg/flight"
	"github.com/opd-ai/go-gravitywell/pkg/validation"
)

// ErrUnknownScript is returned when no built-in script has the given name
var ErrUnknownScript = errors.New("unknown scenario script")

//go:embed scripts/*.tengo
var scriptsFS embed.FS

var commandVars = []string{"look_x", "look_y", "roll", "thrust_x", "thrust_y", "thrust_z"}

// Observation is the state a script sees on one tick
type Observation struct {
	Tick      uint64
	Time      float64
	DeltaTime float64
	Speed     float64
	Altitude  float64
	Landed    bool
}

// Command is what a script asked for on one tick
type Command struct {
	LookX  float64
	LookY  float64
	Roll   float64
	Thrust mgl64.Vec3
}

// Inputs converts the command into input events, skipping idle axes.
func (c Command) Inputs() []flight.Input {
	var inputs []flight.Input
	if c.LookX != 0 || c.LookY != 0 {
		inputs = append(inputs, flight.LookInput(c.LookX, c.LookY))
	}
	if c.Roll != 0 {
		inputs = append(inputs, flight.RollInput(c.Roll))
	}
	if c.Thrust != (mgl64.Vec3{}) {
		inputs = append(inputs, flight.ThrustInput(c.Thrust[0], c.Thrust[1], c.Thrust[2]))
	}
	return inputs
}

// Script is a compiled scenario
type Script struct {
	name     string
	compiled *tengo.Compiled
	memory   *tengo.Map
}

// Compile compiles src with the math module available.
func Compile(name string, src []byte) (*Script, error) {
	if err := validation.ValidateScript(src); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", name, err)
	}

	memory := &tengo.Map{Value: map[string]tengo.Object{}}

	script := tengo.NewScript(src)
	for global, value := range globals(Observation{}, memory) {
		if err := script.Add(global, value); err != nil {
			return nil, err
		}
	}

	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile scenario %q: %w", name, err)
	}

	return &Script{
		name:     name,
		compiled: compiled,
		memory:   memory,
	}, nil
}

// Load compiles a script file from disk
func Load(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Compile(name, src)
}

// Builtin compiles one of the scripts shipped with the package
func Builtin(name string) (*Script, error) {
	src, err := scriptsFS.ReadFile("scripts/" + name + ".tengo")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScript, name)
	}
	return Compile(name, src)
}

// BuiltinNames lists the built-in scripts in sorted order
func BuiltinNames() []string {
	entries, err := scriptsFS.ReadDir("scripts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".tengo"))
	}
	sort.Strings(names)
	return names
}

// Open loads a script file when ref names an existing file, otherwise a
// built-in script.
func Open(ref string) (*Script, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return Load(ref)
	}
	return Builtin(ref)
}

// Name returns the script name
func (s *Script) Name() string {
	return s.name
}

// Step runs the script once for obs and returns the command it produced.
// Commands start from zero every tick. Globals the script never mentions
// are dropped by the compiler and skipped here; unset commands read as 0.
func (s *Script) Step(ctx context.Context, obs Observation) (Command, error) {
	for name, value := range globals(obs, s.memory) {
		if !s.compiled.IsDefined(name) {
			continue
		}
		if err := s.compiled.Set(name, value); err != nil {
			return Command{}, fmt.Errorf("scenario %q: set %s: %w", s.name, name, err)
		}
	}

	if err := s.compiled.RunContext(ctx); err != nil {
		return Command{}, fmt.Errorf("scenario %q: %w", s.name, err)
	}

	return Command{
		LookX: s.compiled.Get("look_x").Float(),
		LookY: s.compiled.Get("look_y").Float(),
		Roll:  s.compiled.Get("roll").Float(),
		Thrust: mgl64.Vec3{
			s.compiled.Get("thrust_x").Float(),
			s.compiled.Get("thrust_y").Float(),
			s.compiled.Get("thrust_z").Float(),
		},
	}, nil
}

// globals returns every script global for obs with zeroed commands
func globals(obs Observation, memory *tengo.Map) map[string]interface{} {
	values := map[string]interface{}{
		"tick":     int64(obs.Tick),
		"time":     obs.Time,
		"dt":       obs.DeltaTime,
		"speed":    obs.Speed,
		"altitude": obs.Altitude,
		"landed":   obs.Landed,
		"memory":   memory,
	}
	for _, v := range commandVars {
		values[v] = 0.0
	}
	return values
}

// Memory returns a copy of the script's persistent memory
func (s *Script) Memory() map[string]interface{} {
	out := make(map[string]interface{}, len(s.memory.Value))
	for k, v := range s.memory.Value {
		out[k] = tengo.ToInterface(v)
	}
	return out
}
