package engine

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-gravitywell/pkg/config"
	"github.com/opd-ai/go-gravitywell/pkg/entity"
	"github.com/opd-ai/go-gravitywell/pkg/event"
	"github.com/opd-ai/go-gravitywell/pkg/flight"
	"github.com/opd-ai/go-gravitywell/pkg/logging"
	"github.com/opd-ai/go-gravitywell/pkg/physics"
	"github.com/opd-ai/go-gravitywell/pkg/validation"
)

const tolerance = 1e-9

// emptyConfig has one planet of radius 1000 at the origin with a 5000 unit
// field and nothing else.
func emptyConfig() *config.TuningConfig {
	cfg := config.DefaultConfig()
	cfg.Planets = []config.PlanetConfig{
		{Name: "Rock", SurfaceRadius: 1000, FieldRadius: 5000, Strength: 490},
	}
	cfg.Spawns = nil
	return cfg
}

func newTestWorld(t *testing.T, cfg *config.TuningConfig) *World {
	t.Helper()
	logger := logging.NewLoggerWithWriter(io.Discard, slog.LevelError, "json")
	w, err := NewWorld(cfg, logger, event.NewEventBus())
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func vecNear(a, b mgl64.Vec3, tol float64) bool {
	return physics.Distance(a, b) <= tol
}

func TestNewWorld_DefaultConfig(t *testing.T) {
	w := newTestWorld(t, config.DefaultConfig())

	if w.Count() != 4 {
		t.Errorf("Count() = %d, want 4", w.Count())
	}
	if len(w.Planets()) != 1 {
		t.Errorf("got %d planets, want 1", len(w.Planets()))
	}

	id, ok := w.Possessed()
	if !ok {
		t.Fatal("no entity possessed")
	}
	e, _ := w.Entity(id)
	if e.GetName() != "Lander" {
		t.Errorf("possessed %q, want Lander", e.GetName())
	}

	entities := w.Entities()
	names := []string{"Terra", "Lander", "Pilot", "Cargo"}
	for i, name := range names {
		if entities[i].GetName() != name {
			t.Errorf("entity %d = %q, want %q", i, entities[i].GetName(), name)
		}
	}
}

func TestNewWorld_InvalidConfig(t *testing.T) {
	if _, err := NewWorld(nil, nil, nil); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("nil config error = %v, want ErrInvalidConfig", err)
	}

	cfg := emptyConfig()
	cfg.Simulation.DeltaTime = 0
	if _, err := NewWorld(cfg, nil, nil); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("zero dt error = %v, want ErrInvalidConfig", err)
	}
}

func TestWorld_SystemOrder(t *testing.T) {
	w := newTestWorld(t, emptyConfig())

	systems := w.systems.Systems()
	if len(systems) != 4 {
		t.Fatalf("got %d systems, want 4", len(systems))
	}
	if _, ok := systems[0].(*FlightSystem); !ok {
		t.Errorf("system 0 is %T, want *FlightSystem", systems[0])
	}
	if _, ok := systems[1].(*GravitySystem); !ok {
		t.Errorf("system 1 is %T, want *GravitySystem", systems[1])
	}
	if _, ok := systems[2].(*LandingSystem); !ok {
		t.Errorf("system 2 is %T, want *LandingSystem", systems[2])
	}
	if _, ok := systems[3].(*MovementSystem); !ok {
		t.Errorf("system 3 is %T, want *MovementSystem", systems[3])
	}
}

func TestWorld_GravityPullsCharacter(t *testing.T) {
	cfg := emptyConfig()
	cfg.Profiles.Character.Deceleration = 0
	w := newTestWorld(t, cfg)
	character := w.SpawnCharacter("Drifter", mgl64.Vec3{0, 0, 3000}, physics.Rotator{})

	w.Tick(0.016)

	wantVelocity := mgl64.Vec3{0, 0, -7.84}
	if !vecNear(character.GetVelocity(), wantVelocity, tolerance) {
		t.Errorf("velocity = %v, want %v", character.GetVelocity(), wantVelocity)
	}
	wantPosition := mgl64.Vec3{0, 0, 3000 - 7.84*0.016}
	if !vecNear(character.GetPosition(), wantPosition, tolerance) {
		t.Errorf("position = %v, want %v", character.GetPosition(), wantPosition)
	}
	if got := w.gravity.LastResult().Flyers; got != 1 {
		t.Errorf("gravity pulled %d flyers, want 1", got)
	}
}

func TestWorld_GravityPullsProp(t *testing.T) {
	w := newTestWorld(t, emptyConfig())
	prop := w.SpawnProp("Crate", mgl64.Vec3{0, 3000, 0}, 10, 1000)

	w.Tick(0.5)

	if !vecNear(prop.GetVelocity(), mgl64.Vec3{0, -245, 0}, tolerance) {
		t.Errorf("velocity = %v, want (0, -245, 0)", prop.GetVelocity())
	}
	if !vecNear(prop.GetPosition(), mgl64.Vec3{0, 2877.5, 0}, tolerance) {
		t.Errorf("position = %v, want (0, 2877.5, 0)", prop.GetPosition())
	}
}

func TestWorld_OutsideFieldUnaffected(t *testing.T) {
	w := newTestWorld(t, emptyConfig())
	character := w.SpawnCharacter("Far", mgl64.Vec3{0, 0, 10000}, physics.Rotator{})

	w.Tick(1.0 / 60)

	if character.GetVelocity() != (mgl64.Vec3{}) {
		t.Errorf("velocity = %v, want zero", character.GetVelocity())
	}
}

func landShip(t *testing.T, w *World) *entity.Spaceship {
	t.Helper()
	ship := w.SpawnSpaceship("Lander", mgl64.Vec3{0, 0, 1200}, physics.Rotator{})
	if err := w.Possess(ship.GetID()); err != nil {
		t.Fatalf("Possess: %v", err)
	}
	w.Tick(1.0 / 60)
	if !ship.IsLanded() {
		t.Fatal("ship did not land")
	}
	return ship
}

func TestWorld_LandingPublishesEvent(t *testing.T) {
	w := newTestWorld(t, emptyConfig())

	var landed []*event.LandingEvent
	w.EventBus.Subscribe(event.ShipLanded, func(e event.Event) {
		landed = append(landed, e.(*event.LandingEvent))
	})

	ship := landShip(t, w)

	if len(landed) != 1 {
		t.Fatalf("got %d landing events, want 1", len(landed))
	}
	ev := landed[0]
	if ev.ShipID != uint64(ship.GetID()) {
		t.Errorf("event ship = %d, want %d", ev.ShipID, ship.GetID())
	}
	if !vecNear(ev.Position, mgl64.Vec3{0, 0, 1000}, 1e-6) {
		t.Errorf("event position = %v, want (0, 0, 1000)", ev.Position)
	}
	if !vecNear(ev.Normal, mgl64.Vec3{0, 0, 1}, 1e-6) {
		t.Errorf("event normal = %v, want (0, 0, 1)", ev.Normal)
	}
	if !vecNear(ship.GetPosition(), mgl64.Vec3{0, 0, 1100}, 1e-6) {
		t.Errorf("ship position = %v, want (0, 0, 1100)", ship.GetPosition())
	}
	if ship.GetVelocity() != (mgl64.Vec3{}) {
		t.Errorf("landed velocity = %v, want zero", ship.GetVelocity())
	}

	// a landed ship stays put and publishes nothing more
	w.Tick(1.0 / 60)
	if len(landed) != 1 {
		t.Errorf("got %d landing events after second tick, want 1", len(landed))
	}
	if ship.GetVelocity() != (mgl64.Vec3{}) {
		t.Errorf("landed ship gained velocity %v", ship.GetVelocity())
	}
}

func TestWorld_ThrustTakesOff(t *testing.T) {
	w := newTestWorld(t, emptyConfig())
	ship := landShip(t, w)

	var tookOff int
	w.EventBus.Subscribe(event.ShipTookOff, func(e event.Event) { tookOff++ })

	if err := w.Input(ship.GetID(), flight.ThrustInput(1, 0, 0)); err != nil {
		t.Fatalf("Input: %v", err)
	}

	if ship.IsLanded() {
		t.Fatal("ship still landed after thrust")
	}
	if tookOff != 1 {
		t.Errorf("got %d take-off events, want 1", tookOff)
	}
	if !vecNear(ship.GetPosition(), mgl64.Vec3{0, 0, 1200}, 1e-6) {
		t.Errorf("position = %v, want (0, 0, 1200)", ship.GetPosition())
	}
	if ship.GetVelocity() != (mgl64.Vec3{}) {
		t.Errorf("take-off thrust changed velocity to %v", ship.GetVelocity())
	}

	// look input on a flying ship produces no take-off event
	if err := w.Input(ship.GetID(), flight.LookInput(1, 0)); err != nil {
		t.Fatalf("Input: %v", err)
	}
	if tookOff != 1 {
		t.Errorf("got %d take-off events, want 1", tookOff)
	}
}

func TestWorld_InputErrors(t *testing.T) {
	w := newTestWorld(t, emptyConfig())
	planet := w.Planets()[0]

	tests := []struct {
		name string
		id   entity.ID
		want error
	}{
		{"unknown", entity.ID(math.MaxUint64), ErrUnknownEntity},
		{"planet", planet.GetID(), ErrNotControllable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := w.Input(tt.id, flight.ThrustInput(1, 0, 0))
			if !errors.Is(err, tt.want) {
				t.Errorf("Input() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWorld_InputRejectsNonFinite(t *testing.T) {
	w := newTestWorld(t, emptyConfig())
	c := w.SpawnCharacter("Pilot", mgl64.Vec3{0, 0, 3000}, physics.Rotator{})

	err := w.Input(c.GetID(), flight.ThrustInput(math.NaN(), 0, 0))
	if !errors.Is(err, validation.ErrInvalidInput) {
		t.Errorf("Input(NaN) error = %v, want ErrInvalidInput", err)
	}
	if v := c.Movement.Velocity; v != (mgl64.Vec3{}) {
		t.Errorf("velocity after rejected input = %v, want zero", v)
	}
}

func TestWorld_InputUnpossessedIsNoop(t *testing.T) {
	w := newTestWorld(t, emptyConfig())
	character := w.SpawnCharacter("Idle", mgl64.Vec3{0, 0, 20000}, physics.Rotator{})

	if err := w.Input(character.GetID(), flight.ThrustInput(1, 0, 0)); err != nil {
		t.Fatalf("Input: %v", err)
	}
	if character.GetVelocity() != (mgl64.Vec3{}) {
		t.Errorf("velocity = %v, want zero", character.GetVelocity())
	}
}

func TestWorld_InputUsesFrameDelta(t *testing.T) {
	cfg := emptyConfig()
	cfg.Simulation.DeltaTime = 0.1
	w := newTestWorld(t, cfg)
	character := w.SpawnCharacter("Runner", mgl64.Vec3{0, 0, 20000}, physics.Rotator{})
	if err := w.Possess(character.GetID()); err != nil {
		t.Fatal(err)
	}

	if err := w.Input(character.GetID(), flight.ThrustInput(1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	// 400 thrust scale × 0.1 s
	if !vecNear(character.GetVelocity(), mgl64.Vec3{40, 0, 0}, 1e-9) {
		t.Errorf("velocity = %v, want (40, 0, 0)", character.GetVelocity())
	}
}

func TestWorld_Possess(t *testing.T) {
	w := newTestWorld(t, emptyConfig())
	a := w.SpawnCharacter("A", mgl64.Vec3{0, 0, 20000}, physics.Rotator{})
	b := w.SpawnSpaceship("B", mgl64.Vec3{0, 0, 30000}, physics.Rotator{})

	var possessed int
	w.EventBus.Subscribe(event.EntityPossessed, func(e event.Event) { possessed++ })

	if err := w.Possess(a.GetID()); err != nil {
		t.Fatal(err)
	}
	if err := w.Possess(b.GetID()); err != nil {
		t.Fatal(err)
	}

	if a.Possessed() {
		t.Error("previous entity still possessed")
	}
	if !b.Possessed() {
		t.Error("new entity not possessed")
	}
	if id, ok := w.Possessed(); !ok || id != b.GetID() {
		t.Errorf("Possessed() = %d, %v; want %d, true", id, ok, b.GetID())
	}
	if possessed != 2 {
		t.Errorf("got %d possess events, want 2", possessed)
	}

	if err := w.Possess(w.Planets()[0].GetID()); !errors.Is(err, ErrNotControllable) {
		t.Errorf("possessing a planet: error = %v, want ErrNotControllable", err)
	}
	if err := w.Possess(entity.ID(math.MaxUint64)); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("possessing unknown id: error = %v, want ErrUnknownEntity", err)
	}
}

func TestWorld_Remove(t *testing.T) {
	w := newTestWorld(t, emptyConfig())
	character := w.SpawnCharacter("Gone", mgl64.Vec3{0, 0, 3000}, physics.Rotator{})
	id := character.GetID()
	if err := w.Possess(id); err != nil {
		t.Fatal(err)
	}

	var removed int
	w.EventBus.Subscribe(event.EntityRemoved, func(e event.Event) { removed++ })

	if err := w.Remove(id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := w.Entity(id); ok {
		t.Error("entity still present after Remove")
	}
	if _, ok := w.Possessed(); ok {
		t.Error("removed entity still possessed")
	}
	if w.Count() != 1 {
		t.Errorf("Count() = %d, want 1", w.Count())
	}
	if removed != 1 {
		t.Errorf("got %d removal events, want 1", removed)
	}

	w.Tick(1.0 / 60)
	if character.GetVelocity() != (mgl64.Vec3{}) {
		t.Errorf("removed entity still simulated: velocity %v", character.GetVelocity())
	}

	if err := w.Remove(id); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("second Remove error = %v, want ErrUnknownEntity", err)
	}
}

func TestWorld_Overlapping(t *testing.T) {
	w := newTestWorld(t, emptyConfig())
	near := w.SpawnProp("Near", mgl64.Vec3{0, 0, 8000}, 10, 1)
	edge := w.SpawnProp("Edge", mgl64.Vec3{0, 0, 8150}, 60, 1)
	w.SpawnProp("Far", mgl64.Vec3{0, 0, 9000}, 10, 1)
	outside := w.SpawnProp("Outside", mgl64.Vec3{60000, 0, 0}, 10, 1)

	found := w.Overlapping(physics.Sphere{Center: mgl64.Vec3{0, 0, 8000}, Radius: 100})
	got := make(map[string]bool)
	for _, e := range found {
		got[e.GetName()] = true
	}
	if len(found) != 2 || !got[near.GetName()] || !got[edge.GetName()] {
		t.Errorf("Overlapping() = %v, want Near and Edge", got)
	}

	found = w.Overlapping(physics.Sphere{Center: mgl64.Vec3{60000, 0, 0}, Radius: 5})
	if len(found) != 1 || found[0] != outside {
		t.Errorf("out-of-bounds query found %d entities, want Outside", len(found))
	}
}

func TestWorld_Probe(t *testing.T) {
	cfg := emptyConfig()
	cfg.Planets = append(cfg.Planets, config.PlanetConfig{
		Name: "Moon", Position: mgl64.Vec3{0, 0, 3000}, SurfaceRadius: 500, FieldRadius: 500, Strength: 0,
	})
	w := newTestWorld(t, cfg)

	hit, ok := w.Probe(mgl64.Vec3{0, 0, 5000}, mgl64.Vec3{0, 0, -5000})
	if !ok {
		t.Fatal("expected a hit")
	}
	if !vecNear(hit.Point, mgl64.Vec3{0, 0, 3500}, 1e-6) {
		t.Errorf("hit point = %v, want nearest surface (0, 0, 3500)", hit.Point)
	}
	if math.Abs(hit.Time-0.15) > 1e-9 {
		t.Errorf("hit time = %v, want 0.15", hit.Time)
	}

	if _, ok := w.Probe(mgl64.Vec3{5000, 0, 5000}, mgl64.Vec3{5000, 0, -5000}); ok {
		t.Error("expected a miss")
	}
}

func TestWorld_Altitude(t *testing.T) {
	w := newTestWorld(t, emptyConfig())
	character := w.SpawnCharacter("Hover", mgl64.Vec3{0, 0, 1500}, physics.Rotator{})

	alt, ok := w.Altitude(character.GetID())
	if !ok || math.Abs(alt-500) > tolerance {
		t.Errorf("Altitude() = %v, %v; want 500, true", alt, ok)
	}
	if _, ok := w.Altitude(entity.ID(math.MaxUint64)); ok {
		t.Error("expected false for unknown entity")
	}
}

func TestWorld_State(t *testing.T) {
	w := newTestWorld(t, emptyConfig())
	ship := landShip(t, w)

	st, err := w.State(ship.GetID())
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if !st.Landed || st.Name != "Lander" || st.Kind != entity.KindSpaceship {
		t.Errorf("State() = %+v", st)
	}
	if math.Abs(st.Altitude-100) > 1e-6 {
		t.Errorf("altitude = %v, want 100", st.Altitude)
	}
	if st.Speed != 0 {
		t.Errorf("speed = %v, want 0", st.Speed)
	}

	if _, err := w.State(entity.ID(math.MaxUint64)); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("State() error = %v, want ErrUnknownEntity", err)
	}
}

func TestWorld_Tick(t *testing.T) {
	w := newTestWorld(t, emptyConfig())

	w.Tick(0)
	w.Tick(-1)
	if w.CurrentTick != 0 {
		t.Errorf("non-positive steps advanced the tick to %d", w.CurrentTick)
	}

	w.Tick(0.25)
	w.Tick(0.25)
	if w.CurrentTick != 2 {
		t.Errorf("CurrentTick = %d, want 2", w.CurrentTick)
	}
	if math.Abs(w.ElapsedTime-0.5) > tolerance {
		t.Errorf("ElapsedTime = %v, want 0.5", w.ElapsedTime)
	}
	if w.FrameDelta() != 0.25 {
		t.Errorf("FrameDelta() = %v, want 0.25", w.FrameDelta())
	}
}

func TestWorld_ApplyTuning(t *testing.T) {
	w := newTestWorld(t, emptyConfig())
	character := w.SpawnCharacter("Tuned", mgl64.Vec3{0, 0, 20000}, physics.Rotator{})
	ship := w.SpawnSpaceship("Tuned Ship", mgl64.Vec3{0, 0, 30000}, physics.Rotator{})

	var reloaded int
	w.EventBus.Subscribe(event.TuningReloaded, func(e event.Event) { reloaded++ })

	cfg := emptyConfig()
	cfg.Profiles.Character.MaxSpeed = 123
	cfg.Profiles.Spaceship.Landing.MaxLandingSpeed = 50
	cfg.Planets[0].Strength = 100
	cfg.Planets[0].FieldRadius = 7000

	if err := w.ApplyTuning(cfg); err != nil {
		t.Fatalf("ApplyTuning: %v", err)
	}

	if character.Movement.MaxSpeed != 123 {
		t.Errorf("character max speed = %v, want 123", character.Movement.MaxSpeed)
	}
	if ship.Landing.Params().MaxLandingSpeed != 50 {
		t.Errorf("ship landing speed = %v, want 50", ship.Landing.Params().MaxLandingSpeed)
	}
	field := w.Planets()[0].Field
	if field.Strength != 100 || field.Radius != 7000 {
		t.Errorf("field = %+v, want strength 100 radius 7000", field)
	}
	if w.Config != cfg {
		t.Error("world config not replaced")
	}
	if reloaded != 1 {
		t.Errorf("got %d reload events, want 1", reloaded)
	}

	bad := emptyConfig()
	bad.WorldSize = -1
	if err := w.ApplyTuning(bad); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("ApplyTuning(invalid) error = %v, want ErrInvalidConfig", err)
	}
}

func TestWorld_FindByName(t *testing.T) {
	w := newTestWorld(t, config.DefaultConfig())

	e, ok := w.FindByName("Pilot")
	if !ok || e.GetKind() != entity.KindCharacter {
		t.Errorf("FindByName(Pilot) = %v, %v", e, ok)
	}
	if _, ok := w.FindByName("Nobody"); ok {
		t.Error("found an entity that does not exist")
	}
}
