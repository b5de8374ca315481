// pkg/entity/planet.go
package entity

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-gravitywell/pkg/gravity"
	"github.com/opd-ai/go-gravitywell/pkg/physics"
)

// Planet is a static solid sphere surrounded by a gravity field
type Planet struct {
	BaseEntity
	Position mgl64.Vec3
	Field    *gravity.Field
}

// NewPlanet creates a planet. The field radius is clamped so it always
// covers the surface.
func NewPlanet(name string, position mgl64.Vec3, surfaceRadius, fieldRadius float64) *Planet {
	if fieldRadius < surfaceRadius {
		fieldRadius = surfaceRadius
	}

	return &Planet{
		BaseEntity: newBaseEntity(name, physics.Rotator{}, surfaceRadius),
		Position:   position,
		Field:      gravity.NewField(position, fieldRadius),
	}
}

// GetKind returns KindPlanet
func (p *Planet) GetKind() Kind {
	return KindPlanet
}

// GetPosition returns the planet's center
func (p *Planet) GetPosition() mgl64.Vec3 {
	return p.Position
}

// GetCollider returns the solid surface sphere
func (p *Planet) GetCollider() physics.Sphere {
	return physics.Sphere{Center: p.Position, Radius: p.Radius}
}

// Update is a no-op; planets don't move.
func (p *Planet) Update(deltaTime float64) {}

// Altitude returns the distance from point to the surface. Negative values
// are below the surface.
func (p *Planet) Altitude(point mgl64.Vec3) float64 {
	return physics.Distance(point, p.Position) - p.Radius
}
