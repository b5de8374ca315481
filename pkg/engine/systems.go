// pkg/engine/systems.go
package engine

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-gravitywell/pkg/entity"
	"github.com/opd-ai/go-gravitywell/pkg/event"
	"github.com/opd-ai/go-gravitywell/pkg/gravity"
)

// System priorities; ecs runs higher values first.
const (
	FlightPriority   = 40
	GravityPriority  = 30
	LandingPriority  = 20
	MovementPriority = 10
)

// The ecs world hands systems a float32 step. Systems read the world's
// float64 frame step instead so integration stays in double precision.

type flightEntry struct {
	basic *ecs.BasicEntity
	body  Controllable
}

// FlightSystem runs smoothing, target composition and orientation
// interpolation for every controllable entity.
type FlightSystem struct {
	world   *World
	entries []flightEntry
}

// Add satisfies the ecs.System interface
func (s *FlightSystem) Add(basic *ecs.BasicEntity, body Controllable) {
	s.entries = append(s.entries, flightEntry{basic: basic, body: body})
}

// Remove satisfies the ecs.System interface
func (s *FlightSystem) Remove(basic ecs.BasicEntity) {
	for i, e := range s.entries {
		if e.basic.ID() == basic.ID() {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// Priority places flight first in the tick
func (s *FlightSystem) Priority() int { return FlightPriority }

// Update ticks every flight controller
func (s *FlightSystem) Update(dt float32) {
	for _, e := range s.entries {
		e.body.Tick(s.world.frameDelta)
	}
}

type planetEntry struct {
	basic  *ecs.BasicEntity
	planet *entity.Planet
}

// GravitySystem applies every planet's field to the bodies overlapping it.
type GravitySystem struct {
	world   *World
	entries []planetEntry
	last    gravity.Result
}

// Add satisfies the ecs.System interface
func (s *GravitySystem) Add(basic *ecs.BasicEntity, planet *entity.Planet) {
	s.entries = append(s.entries, planetEntry{basic: basic, planet: planet})
}

// Remove satisfies the ecs.System interface
func (s *GravitySystem) Remove(basic ecs.BasicEntity) {
	for i, e := range s.entries {
		if e.basic.ID() == basic.ID() {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// Priority runs gravity after flight
func (s *GravitySystem) Priority() int { return GravityPriority }

// LastResult sums what the fields did during the last tick
func (s *GravitySystem) LastResult() gravity.Result { return s.last }

// Update pulls bodies toward each planet
func (s *GravitySystem) Update(dt float32) {
	w := s.world
	s.last = gravity.Result{}

	for _, e := range s.entries {
		field := e.planet.Field
		bodies := make([]gravity.Body, 0)
		for _, other := range w.Overlapping(field.Volume()) {
			if other.GetKind() == entity.KindPlanet {
				continue
			}
			bodies = append(bodies, other)
		}

		if len(bodies) == 0 {
			w.Logger.Debug(w.ctx, "no bodies in gravity field", "planet", e.planet.GetName())
			continue
		}

		res := field.Apply(bodies, w.frameDelta)
		s.last.Flyers += res.Flyers
		s.last.Bodies += res.Bodies
		s.last.Skipped += res.Skipped
	}
}

type landingEntry struct {
	basic *ecs.BasicEntity
	ship  *entity.Spaceship
}

// LandingSystem probes below every flying spaceship.
type LandingSystem struct {
	world   *World
	entries []landingEntry
}

// Add satisfies the ecs.System interface
func (s *LandingSystem) Add(basic *ecs.BasicEntity, ship *entity.Spaceship) {
	s.entries = append(s.entries, landingEntry{basic: basic, ship: ship})
}

// Remove satisfies the ecs.System interface
func (s *LandingSystem) Remove(basic ecs.BasicEntity) {
	for i, e := range s.entries {
		if e.basic.ID() == basic.ID() {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// Priority runs landing after gravity
func (s *LandingSystem) Priority() int { return LandingPriority }

// Update lands ships that are low and slow enough
func (s *LandingSystem) Update(dt float32) {
	w := s.world
	for _, e := range s.entries {
		if !e.ship.CheckForLanding(w) {
			continue
		}
		hit := e.ship.Landing.LastHit()
		id := e.ship.GetID()
		w.Logger.Info(w.ctx, "ship landed",
			"entity_id", uint64(id),
			"name", e.ship.GetName(),
			"position", e.ship.GetPosition())
		w.EventBus.Publish(event.NewLandingEvent(event.ShipLanded, w, uint64(id), hit.Point, hit.Normal))
	}
}

type movementEntry struct {
	basic *ecs.BasicEntity
	body  entity.Entity
}

// MovementSystem advances every moving body by its velocity.
type MovementSystem struct {
	world   *World
	entries []movementEntry
}

// Add satisfies the ecs.System interface
func (s *MovementSystem) Add(basic *ecs.BasicEntity, body entity.Entity) {
	s.entries = append(s.entries, movementEntry{basic: basic, body: body})
}

// Remove satisfies the ecs.System interface
func (s *MovementSystem) Remove(basic ecs.BasicEntity) {
	for i, e := range s.entries {
		if e.basic.ID() == basic.ID() {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// Priority runs movement last
func (s *MovementSystem) Priority() int { return MovementPriority }

// Update integrates positions
func (s *MovementSystem) Update(dt float32) {
	for _, e := range s.entries {
		e.body.Update(s.world.frameDelta)
	}
	s.world.indexDirty = true
}
