// pkg/physics/movement.go
package physics

import "github.com/go-gl/mathgl/mgl64"

// MovementState is the velocity integrator of a body that is steered by
// writing its velocity directly. An inactive integrator neither moves the
// body nor accepts velocity changes.
type MovementState struct {
	Position     mgl64.Vec3
	Velocity     mgl64.Vec3
	MaxSpeed     float64 // 0 disables the clamp
	Deceleration float64 // braking, units/s²
	Active       bool
}

// NewMovementState creates an active integrator at position
func NewMovementState(position mgl64.Vec3, maxSpeed, deceleration float64) *MovementState {
	return &MovementState{
		Position:     position,
		MaxSpeed:     maxSpeed,
		Deceleration: deceleration,
		Active:       true,
	}
}

// AddVelocity adds dv to the current velocity
func (m *MovementState) AddVelocity(dv mgl64.Vec3) {
	if !m.Active {
		return
	}
	m.Velocity = m.Velocity.Add(dv)
}

// Stop zeroes the velocity immediately
func (m *MovementState) Stop() {
	m.Velocity = mgl64.Vec3{}
}

// Speed returns the magnitude of the velocity
func (m *MovementState) Speed() float64 {
	return m.Velocity.Len()
}

// SpeedSquared returns the squared magnitude of the velocity
func (m *MovementState) SpeedSquared() float64 {
	return LengthSquared(m.Velocity)
}

// UpdateMovement brakes, clamps and integrates one tick.
func UpdateMovement(state *MovementState, deltaTime float64) {
	if !state.Active || deltaTime <= 0 {
		return
	}

	// Braking
	if state.Deceleration > 0 {
		speed := state.Speed()
		if speed > 0 {
			newSpeed := speed - state.Deceleration*deltaTime
			if newSpeed < 0 {
				newSpeed = 0
			}
			state.Velocity = state.Velocity.Mul(newSpeed / speed)
		}
	}

	// Limit speed
	if state.MaxSpeed > 0 && state.Speed() > state.MaxSpeed {
		state.Velocity = SafeNormal(state.Velocity).Mul(state.MaxSpeed)
	}

	state.Position = state.Position.Add(state.Velocity.Mul(deltaTime))
}

// RigidBody is a free-simulated body moved only by accumulated forces.
type RigidBody struct {
	Position   mgl64.Vec3
	Velocity   mgl64.Vec3
	Mass       float64
	Simulating bool

	force mgl64.Vec3
	accel mgl64.Vec3
}

// NewRigidBody creates a simulating rigid body at position
func NewRigidBody(position mgl64.Vec3, mass float64) *RigidBody {
	return &RigidBody{
		Position:   position,
		Mass:       mass,
		Simulating: true,
	}
}

// AddForce accumulates a world-space force for the next integration step.
// With accelChange the value is treated as an acceleration and mass is ignored.
func (b *RigidBody) AddForce(force mgl64.Vec3, accelChange bool) {
	if accelChange {
		b.accel = b.accel.Add(force)
		return
	}
	b.force = b.force.Add(force)
}

// PendingAcceleration returns the acceleration the next Integrate call will apply
func (b *RigidBody) PendingAcceleration() mgl64.Vec3 {
	a := b.accel
	if b.Mass > 0 {
		a = a.Add(b.force.Mul(1 / b.Mass))
	}
	return a
}

// Integrate advances the body with semi-implicit Euler and clears the accumulators
func (b *RigidBody) Integrate(deltaTime float64) {
	if b.Simulating && deltaTime > 0 {
		b.Velocity = b.Velocity.Add(b.PendingAcceleration().Mul(deltaTime))
		b.Position = b.Position.Add(b.Velocity.Mul(deltaTime))
	}
	b.force = mgl64.Vec3{}
	b.accel = mgl64.Vec3{}
}
