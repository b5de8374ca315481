// pkg/entity/flyer.go
package entity

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-gravitywell/pkg/flight"
	"github.com/opd-ai/go-gravitywell/pkg/physics"
)

// DefaultFlyerRadius is the collision radius of characters and ships
const DefaultFlyerRadius = 50.0

// Flyer is a controllable body moved by direct velocity changes. It owns
// its flight controller and velocity integrator.
type Flyer struct {
	BaseEntity
	Movement *physics.MovementState
	Flight   *flight.Controller
	kind     Kind
}

func newFlyer(name string, kind Kind, position mgl64.Vec3, rotation physics.Rotator, profile flight.Profile) Flyer {
	return Flyer{
		BaseEntity: newBaseEntity(name, rotation, DefaultFlyerRadius),
		Movement:   physics.NewMovementState(position, profile.MaxSpeed, profile.Deceleration),
		Flight:     flight.NewController(profile, rotation),
		kind:       kind,
	}
}

// GetKind returns the flyer's kind
func (f *Flyer) GetKind() Kind {
	return f.kind
}

// GetPosition returns the flyer's position
func (f *Flyer) GetPosition() mgl64.Vec3 {
	return f.Movement.Position
}

// SetPosition teleports the flyer
func (f *Flyer) SetPosition(position mgl64.Vec3) {
	f.Movement.Position = position
}

// GetVelocity returns the flyer's velocity
func (f *Flyer) GetVelocity() mgl64.Vec3 {
	return f.Movement.Velocity
}

// AddVelocity adds dv unless the integrator is inactive
func (f *Flyer) AddVelocity(dv mgl64.Vec3) {
	f.Movement.AddVelocity(dv)
}

// SpeedSquared returns the squared speed
func (f *Flyer) SpeedSquared() float64 {
	return f.Movement.SpeedSquared()
}

// StopMovement zeroes the velocity immediately
func (f *Flyer) StopMovement() {
	f.Movement.Stop()
}

// SetMovementActive switches the velocity integrator on or off
func (f *Flyer) SetMovementActive(active bool) {
	f.Movement.Active = active
}

// MovementActive reports whether the velocity integrator runs
func (f *Flyer) MovementActive() bool {
	return f.Movement.Active
}

// GetCollider returns the flyer's collision sphere
func (f *Flyer) GetCollider() physics.Sphere {
	return physics.Sphere{Center: f.Movement.Position, Radius: f.Radius}
}

// Update integrates the flyer's velocity for one tick
func (f *Flyer) Update(deltaTime float64) {
	physics.UpdateMovement(f.Movement, deltaTime)
}

// Tick runs the orientation model for one frame.
func (f *Flyer) Tick(deltaTime float64) {
	f.Rotation = f.Flight.Tick(f.Rotation, deltaTime)
}

// ReceiveInput routes one input event. deltaTime is the last frame's step,
// used by roll and thrust integration.
func (f *Flyer) ReceiveInput(in flight.Input, deltaTime float64) {
	switch in.Kind {
	case flight.Look:
		f.Flight.ReceiveLook(in.Axis[1], in.Axis[0])
	case flight.Roll:
		f.Flight.ReceiveRoll(in.Axis[0], deltaTime)
	case flight.Thrust:
		f.Thrust(in.Axis, deltaTime)
	}
}

// Thrust adds the velocity change for a local thrust sample.
func (f *Flyer) Thrust(axis mgl64.Vec3, deltaTime float64) {
	if !f.Flight.Attached() {
		return
	}
	f.AddVelocity(f.Flight.ThrustDelta(f.Rotation, axis, deltaTime))
}

// Possess attaches an input source to the flyer
func (f *Flyer) Possess() { f.Flight.Attach() }

// Release detaches the flyer's input source
func (f *Flyer) Release() { f.Flight.Detach() }

// Possessed reports whether an input source drives the flyer
func (f *Flyer) Possessed() bool { return f.Flight.Attached() }

// Profile returns the flyer's tuning
func (f *Flyer) Profile() flight.Profile {
	return f.Flight.Profile()
}

// SetProfile retunes the controller and integrator in place.
func (f *Flyer) SetProfile(profile flight.Profile) {
	f.Flight.SetProfile(profile)
	f.Movement.MaxSpeed = profile.MaxSpeed
	f.Movement.Deceleration = profile.Deceleration
}
