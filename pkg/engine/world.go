// pkg/engine/world.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/EngoEngine/ecs"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-gravitywell/pkg/config"
	"github.com/opd-ai/go-gravitywell/pkg/entity"
	"github.com/opd-ai/go-gravitywell/pkg/event"
	"github.com/opd-ai/go-gravitywell/pkg/flight"
	"github.com/opd-ai/go-gravitywell/pkg/logging"
	"github.com/opd-ai/go-gravitywell/pkg/physics"
	"github.com/opd-ai/go-gravitywell/pkg/validation"
)

var (
	// ErrUnknownEntity is returned for IDs not present in the world
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrNotControllable is returned when an entity cannot take input
	ErrNotControllable = errors.New("entity is not controllable")
)

// octreeCapacity is the number of bodies per node before subdivision
const octreeCapacity = 8

// Controllable is an entity driven by flight input.
type Controllable interface {
	Tick(deltaTime float64)
	ReceiveInput(in flight.Input, deltaTime float64)
}

// Possessable is an entity an input source can attach to.
type Possessable interface {
	Possess()
	Release()
	Possessed() bool
}

// World owns every entity and runs the per-tick systems in order: flight,
// gravity, landing, movement. It is not safe for concurrent use; Tick and
// Input must be called from the same goroutine.
type World struct {
	Config      *config.TuningConfig
	EventBus    *event.Bus
	Logger      *logging.Logger
	CurrentTick uint64
	ElapsedTime float64 // seconds

	ctx        context.Context
	systems    *ecs.World
	entities   map[entity.ID]entity.Entity
	order      []entity.ID
	planets    []*entity.Planet
	possessed  entity.ID
	frameDelta float64

	index      *physics.Octree
	outside    []entity.Entity
	maxRadius  float64
	indexDirty bool

	flight   *FlightSystem
	gravity  *GravitySystem
	landing  *LandingSystem
	movement *MovementSystem
}

// NewWorld builds a world and spawns every planet and body named in cfg.
// A nil logger or bus gets a fresh one.
func NewWorld(cfg *config.TuningConfig, logger *logging.Logger, bus *event.Bus) (*World, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewLogger()
	}
	if bus == nil {
		bus = event.NewEventBus()
	}

	w := &World{
		Config:     cfg,
		EventBus:   bus,
		Logger:     logger,
		ctx:        logging.WithCorrelationID(context.Background(), ""),
		systems:    &ecs.World{},
		entities:   make(map[entity.ID]entity.Entity),
		frameDelta: cfg.Simulation.DeltaTime,
		index: physics.NewOctree(physics.Box{
			HalfSize: cfg.WorldSize / 2,
		}, octreeCapacity),
	}

	w.flight = &FlightSystem{world: w}
	w.gravity = &GravitySystem{world: w}
	w.landing = &LandingSystem{world: w}
	w.movement = &MovementSystem{world: w}
	w.systems.AddSystem(w.flight)
	w.systems.AddSystem(w.gravity)
	w.systems.AddSystem(w.landing)
	w.systems.AddSystem(w.movement)

	for _, pc := range cfg.Planets {
		w.SpawnPlanet(pc)
	}
	for _, sc := range cfg.Spawns {
		e := w.spawnFromConfig(sc)
		if sc.Possess {
			if err := w.Possess(e.GetID()); err != nil {
				return nil, logging.WrapError(err, "possess %s", sc.Name)
			}
		}
	}

	return w, nil
}

// Context returns the world's logging context, which carries the run's
// correlation ID.
func (w *World) Context() context.Context {
	return w.ctx
}

func (w *World) spawnFromConfig(sc config.SpawnConfig) entity.Entity {
	switch entity.KindFromString(sc.Kind) {
	case entity.KindSpaceship:
		return w.SpawnSpaceship(sc.Name, sc.Position, sc.Rotation)
	case entity.KindCharacter:
		return w.SpawnCharacter(sc.Name, sc.Position, sc.Rotation)
	default:
		return w.SpawnProp(sc.Name, sc.Position, sc.Radius, sc.Mass)
	}
}

// SpawnPlanet adds a planet and its gravity field
func (w *World) SpawnPlanet(pc config.PlanetConfig) *entity.Planet {
	planet := entity.NewPlanet(pc.Name, pc.Position, pc.SurfaceRadius, pc.FieldRadius)
	planet.Field.Strength = pc.Strength
	w.Spawn(planet)
	return planet
}

// SpawnSpaceship adds a spaceship using the configured spaceship profile
func (w *World) SpawnSpaceship(name string, position mgl64.Vec3, rotation physics.Rotator) *entity.Spaceship {
	ship := entity.NewSpaceship(name, position, rotation, w.Config.Profiles.Spaceship)
	w.Spawn(ship)
	return ship
}

// SpawnCharacter adds a character using the configured character profile
func (w *World) SpawnCharacter(name string, position mgl64.Vec3, rotation physics.Rotator) *entity.Character {
	character := entity.NewCharacter(name, position, rotation, w.Config.Profiles.Character)
	w.Spawn(character)
	return character
}

// SpawnProp adds a free rigid body
func (w *World) SpawnProp(name string, position mgl64.Vec3, radius, mass float64) *entity.Prop {
	prop := entity.NewProp(name, position, radius, mass)
	w.Spawn(prop)
	return prop
}

// Spawn registers e with the arena and every system it takes part in.
func (w *World) Spawn(e entity.Entity) entity.ID {
	id := e.GetID()
	w.entities[id] = e
	w.order = append(w.order, id)
	if r := e.GetCollider().Radius; r > w.maxRadius {
		w.maxRadius = r
	}
	w.indexDirty = true

	basic := e.GetBasicEntity()
	if planet, ok := e.(*entity.Planet); ok {
		w.planets = append(w.planets, planet)
		w.gravity.Add(basic, planet)
	} else {
		w.movement.Add(basic, e)
	}
	if c, ok := e.(Controllable); ok {
		w.flight.Add(basic, c)
	}
	if ship, ok := e.(*entity.Spaceship); ok {
		w.landing.Add(basic, ship)
	}

	w.Logger.Info(w.ctx, "entity spawned",
		"entity_id", uint64(id),
		"kind", e.GetKind().String(),
		"name", e.GetName())
	w.EventBus.Publish(event.NewEntityEvent(event.EntitySpawned, w, uint64(id), e.GetKind().String(), e.GetName()))

	return id
}

// Remove drops an entity from the arena and every system.
func (w *World) Remove(id entity.ID) error {
	e, ok := w.entities[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}

	w.systems.RemoveEntity(*e.GetBasicEntity())
	delete(w.entities, id)
	w.order = slices.DeleteFunc(w.order, func(other entity.ID) bool { return other == id })
	if planet, ok := e.(*entity.Planet); ok {
		w.planets = slices.DeleteFunc(w.planets, func(p *entity.Planet) bool { return p == planet })
	}
	if w.possessed == id {
		w.possessed = 0
	}
	w.indexDirty = true

	w.Logger.Info(w.ctx, "entity removed",
		"entity_id", uint64(id),
		"kind", e.GetKind().String(),
		"name", e.GetName())
	w.EventBus.Publish(event.NewEntityEvent(event.EntityRemoved, w, uint64(id), e.GetKind().String(), e.GetName()))

	return nil
}

// Possess attaches the world's single input source to id, releasing the
// previously possessed entity.
func (w *World) Possess(id entity.ID) error {
	e, ok := w.entities[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	p, ok := e.(Possessable)
	if !ok {
		return fmt.Errorf("%w: %s is a %s", ErrNotControllable, e.GetName(), e.GetKind())
	}

	if prev, ok := w.entities[w.possessed].(Possessable); ok && w.possessed != id {
		prev.Release()
	}
	p.Possess()
	w.possessed = id

	w.Logger.Info(w.ctx, "entity possessed", "entity_id", uint64(id), "name", e.GetName())
	w.EventBus.Publish(event.NewEntityEvent(event.EntityPossessed, w, uint64(id), e.GetKind().String(), e.GetName()))
	return nil
}

// Possessed returns the entity currently driven by input
func (w *World) Possessed() (entity.ID, bool) {
	return w.possessed, w.possessed != 0
}

// Entity looks up an entity by ID
func (w *World) Entity(id entity.ID) (entity.Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// FindByName returns the first entity with the given name
func (w *World) FindByName(name string) (entity.Entity, bool) {
	for _, id := range w.order {
		if e := w.entities[id]; e.GetName() == name {
			return e, true
		}
	}
	return nil, false
}

// Entities returns every entity in spawn order
func (w *World) Entities() []entity.Entity {
	out := make([]entity.Entity, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.entities[id])
	}
	return out
}

// Planets returns the planets in spawn order
func (w *World) Planets() []*entity.Planet {
	return slices.Clone(w.planets)
}

// Count returns the number of entities in the world
func (w *World) Count() int {
	return len(w.entities)
}

// FrameDelta is the step of the last tick, or the configured dt before the
// first one.
func (w *World) FrameDelta() float64 {
	return w.frameDelta
}

// Tick advances the world by deltaTime seconds. Non-positive steps are
// ignored.
func (w *World) Tick(deltaTime float64) {
	if deltaTime <= 0 {
		return
	}
	w.frameDelta = deltaTime
	w.indexDirty = true

	w.systems.Update(float32(deltaTime))

	w.CurrentTick++
	w.ElapsedTime += deltaTime
}

// Input delivers one input event to a controllable entity. Input for an
// entity no one possesses is dropped silently by the entity itself.
func (w *World) Input(id entity.ID, in flight.Input) error {
	e, ok := w.entities[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	c, ok := e.(Controllable)
	if !ok {
		return fmt.Errorf("%w: %s is a %s", ErrNotControllable, e.GetName(), e.GetKind())
	}
	if err := validation.ValidateInput(in); err != nil {
		return err
	}

	ship, isShip := e.(*entity.Spaceship)
	wasLanded := isShip && ship.IsLanded()

	c.ReceiveInput(in, w.frameDelta)

	if wasLanded && !ship.IsLanded() {
		w.Logger.Info(w.ctx, "ship took off",
			"entity_id", uint64(id),
			"name", ship.GetName(),
			"position", ship.GetPosition())
		w.EventBus.Publish(event.NewLandingEvent(event.ShipTookOff, w, uint64(id), ship.GetPosition(), ship.Landing.LastHit().Normal))
	}
	return nil
}

// Overlapping returns every entity whose collider overlaps s.
func (w *World) Overlapping(s physics.Sphere) []entity.Entity {
	w.refreshIndex()

	query := physics.Sphere{Center: s.Center, Radius: s.Radius + w.maxRadius}
	candidates := w.index.QuerySphere(query)

	found := make([]entity.Entity, 0, len(candidates))
	for _, c := range candidates {
		e := c.(entity.Entity)
		if s.Overlaps(e.GetCollider()) {
			found = append(found, e)
		}
	}
	for _, e := range w.outside {
		if s.Overlaps(e.GetCollider()) {
			found = append(found, e)
		}
	}
	return found
}

// refreshIndex rebuilds the octree from current positions. Bodies outside
// the world bounds are kept in a flat list so queries still see them.
func (w *World) refreshIndex() {
	if !w.indexDirty {
		return
	}
	w.index.Clear()
	w.outside = w.outside[:0]
	for _, id := range w.order {
		e := w.entities[id]
		if !w.index.Insert(e.GetPosition(), e) {
			w.outside = append(w.outside, e)
		}
	}
	w.indexDirty = false
}

// Probe casts a segment against every planet surface and returns the
// nearest hit.
func (w *World) Probe(start, end mgl64.Vec3) (physics.HitResult, bool) {
	var (
		best  physics.HitResult
		found bool
	)
	for _, planet := range w.planets {
		hit, ok := physics.SegmentSphere(start, end, planet.GetCollider())
		if !ok {
			continue
		}
		if !found || hit.Time < best.Time {
			best = hit
			found = true
		}
	}
	return best, found
}

// Altitude returns the height of id above the nearest planet surface.
func (w *World) Altitude(id entity.ID) (float64, bool) {
	e, ok := w.entities[id]
	if !ok || len(w.planets) == 0 {
		return 0, false
	}

	pos := e.GetPosition()
	best := w.planets[0].Altitude(pos)
	for _, planet := range w.planets[1:] {
		if alt := planet.Altitude(pos); alt < best {
			best = alt
		}
	}
	return best, true
}

// ApplyTuning retunes live flyers and planets from a reloaded config.
// Entities are neither spawned nor removed; planets are matched by name.
func (w *World) ApplyTuning(cfg *config.TuningConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	for _, id := range w.order {
		switch e := w.entities[id].(type) {
		case *entity.Spaceship:
			e.SetProfile(cfg.Profiles.Spaceship)
		case *entity.Character:
			e.SetProfile(cfg.Profiles.Character)
		}
	}

	for _, pc := range cfg.Planets {
		for _, planet := range w.planets {
			if planet.GetName() != pc.Name {
				continue
			}
			planet.Field.Strength = pc.Strength
			planet.Field.Radius = max(pc.FieldRadius, planet.Radius)
		}
	}

	w.Config = cfg
	w.Logger.Info(w.ctx, "tuning reloaded", "planets", len(cfg.Planets))
	w.EventBus.Publish(&event.BaseEvent{EventType: event.TuningReloaded, Source: w})
	return nil
}

// BodyState is a read-only snapshot of one entity
type BodyState struct {
	ID       entity.ID
	Name     string
	Kind     entity.Kind
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Speed    float64
	Rotation physics.Rotator
	Altitude float64
	Landed   bool
}

// State returns a snapshot of id
func (w *World) State(id entity.ID) (BodyState, error) {
	e, ok := w.entities[id]
	if !ok {
		return BodyState{}, fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}

	st := BodyState{
		ID:       id,
		Name:     e.GetName(),
		Kind:     e.GetKind(),
		Position: e.GetPosition(),
	}
	if v, ok := e.(interface{ GetVelocity() mgl64.Vec3 }); ok {
		st.Velocity = v.GetVelocity()
		st.Speed = st.Velocity.Len()
	}
	if r, ok := e.(interface{ GetRotation() physics.Rotator }); ok {
		st.Rotation = r.GetRotation()
	}
	st.Altitude, _ = w.Altitude(id)
	if ship, ok := e.(*entity.Spaceship); ok {
		st.Landed = ship.IsLanded()
	}
	return st, nil
}
