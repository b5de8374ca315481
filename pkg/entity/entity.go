// pkg/entity/entity.go
package entity

import (
	"github.com/EngoEngine/ecs"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-gravitywell/pkg/physics"
)

// ID is a unique identifier for an entity
type ID uint64

// Kind tells the host which systems an entity takes part in
type Kind int

const (
	KindPlanet Kind = iota
	KindCharacter
	KindSpaceship
	KindProp
)

// String returns the kind name used in config and logs
func (k Kind) String() string {
	switch k {
	case KindPlanet:
		return "planet"
	case KindCharacter:
		return "character"
	case KindSpaceship:
		return "spaceship"
	case KindProp:
		return "prop"
	default:
		return "unknown"
	}
}

// KindFromString parses a kind name. Unknown names map to KindProp.
func KindFromString(s string) Kind {
	switch s {
	case "planet":
		return KindPlanet
	case "character":
		return KindCharacter
	case "spaceship", "ship":
		return KindSpaceship
	default:
		return KindProp
	}
}

// Entity is the base interface for all simulated objects
type Entity interface {
	GetID() ID
	GetBasicEntity() *ecs.BasicEntity
	GetName() string
	GetKind() Kind
	GetPosition() mgl64.Vec3
	GetCollider() physics.Sphere
	Update(deltaTime float64)
}

// BaseEntity contains common functionality for all entities
type BaseEntity struct {
	ecs.BasicEntity
	Name     string
	Rotation physics.Rotator
	Radius   float64
	Active   bool
}

func newBaseEntity(name string, rotation physics.Rotator, radius float64) BaseEntity {
	return BaseEntity{
		BasicEntity: ecs.NewBasic(),
		Name:        name,
		Rotation:    rotation,
		Radius:      radius,
		Active:      true,
	}
}

// GetID returns the entity's unique identifier
func (e *BaseEntity) GetID() ID {
	return ID(e.BasicEntity.ID())
}

// GetName returns the entity's display name
func (e *BaseEntity) GetName() string {
	return e.Name
}

// GetRotation returns the entity's orientation
func (e *BaseEntity) GetRotation() physics.Rotator {
	return e.Rotation
}

// SetRotation replaces the entity's orientation
func (e *BaseEntity) SetRotation(rotation physics.Rotator) {
	e.Rotation = rotation
}
