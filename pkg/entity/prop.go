// pkg/entity/prop.go
package entity

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-gravitywell/pkg/physics"
)

// Prop is a free rigid body such as a crate or asteroid
type Prop struct {
	BaseEntity
	Body *physics.RigidBody
}

// NewProp creates a simulating rigid body
func NewProp(name string, position mgl64.Vec3, radius, mass float64) *Prop {
	return &Prop{
		BaseEntity: newBaseEntity(name, physics.Rotator{}, radius),
		Body:       physics.NewRigidBody(position, mass),
	}
}

// GetKind returns KindProp
func (p *Prop) GetKind() Kind {
	return KindProp
}

// GetPosition returns the body's position
func (p *Prop) GetPosition() mgl64.Vec3 {
	return p.Body.Position
}

// GetVelocity returns the body's velocity
func (p *Prop) GetVelocity() mgl64.Vec3 {
	return p.Body.Velocity
}

// GetCollider returns the body's collision sphere
func (p *Prop) GetCollider() physics.Sphere {
	return physics.Sphere{Center: p.Body.Position, Radius: p.Radius}
}

// IsSimulatingPhysics reports whether forces move the body
func (p *Prop) IsSimulatingPhysics() bool {
	return p.Body.Simulating
}

// AddForce queues a force for the next integration step
func (p *Prop) AddForce(force mgl64.Vec3, accelChange bool) {
	p.Body.AddForce(force, accelChange)
}

// Update integrates the accumulated forces
func (p *Prop) Update(deltaTime float64) {
	p.Body.Integrate(deltaTime)
}
