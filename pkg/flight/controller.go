package flight

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-gravitywell/pkg/physics"
)

// Controller holds the per-body flight state: the pending look sample,
// the smoothed look input, roll velocity and the target orientation.
// It is not safe for concurrent use; input and ticks are expected to be
// serialized by the host.
type Controller struct {
	profile Profile

	// pending look sample, consumed by UpdateSmoothedInput
	pitchInput float64
	yawInput   float64

	smoothedPitch float64
	smoothedYaw   float64

	rollVelocity float64
	target       physics.Rotator

	attached  bool
	suspended bool
}

// NewController returns a detached controller whose target starts at initial
func NewController(profile Profile, initial physics.Rotator) *Controller {
	return &Controller{
		profile: profile,
		target:  initial,
	}
}

// Profile returns the tuning currently in use
func (c *Controller) Profile() Profile {
	return c.profile
}

// SetProfile swaps the tuning in place. Accumulated state is kept.
func (c *Controller) SetProfile(profile Profile) {
	c.profile = profile
}

// Attach marks the controller as driven by an input source.
func (c *Controller) Attach() { c.attached = true }

// Detach drops the input source. Input calls become silent no-ops.
func (c *Controller) Detach() { c.attached = false }

// Attached reports whether an input source drives this controller
func (c *Controller) Attached() bool { return c.attached }

// Suspend stops look/roll handling and orientation interpolation.
func (c *Controller) Suspend() { c.suspended = true }

// Resume re-enables a suspended controller
func (c *Controller) Resume() { c.suspended = false }

// Suspended reports whether the controller is suspended
func (c *Controller) Suspended() bool { return c.suspended }

// AcceptsInput reports whether input events currently have any effect.
func (c *Controller) AcceptsInput() bool {
	return c.attached && !c.suspended
}

// ReceiveLook stores the latest look sample scaled by the look sensitivity.
// A later sample in the same frame overwrites an earlier one.
func (c *Controller) ReceiveLook(pitchRaw, yawRaw float64) {
	if !c.AcceptsInput() {
		return
	}
	c.pitchInput = pitchRaw * c.profile.LookSensitivity
	c.yawInput = yawRaw * c.profile.LookSensitivity
}

// ReceiveRoll accelerates the roll velocity and clamps it to the profile
// maximum.
func (c *Controller) ReceiveRoll(rollRaw, deltaTime float64) {
	if !c.AcceptsInput() {
		return
	}
	c.rollVelocity += rollRaw * c.profile.RollAcceleration * deltaTime
	c.rollVelocity = mgl64.Clamp(c.rollVelocity, -c.profile.MaxRollVelocity, c.profile.MaxRollVelocity)
}

// UpdateSmoothedInput moves the smoothed look input toward the pending
// sample and consumes it.
func (c *Controller) UpdateSmoothedInput(deltaTime float64) {
	speed := c.profile.SmoothingSpeed()
	c.smoothedPitch = physics.FInterpTo(c.smoothedPitch, c.pitchInput, deltaTime, speed)
	c.smoothedYaw = physics.FInterpTo(c.smoothedYaw, c.yawInput, deltaTime, speed)

	c.pitchInput = 0
	c.yawInput = 0
}

// ComposeTargetOrientation rotates current by the smoothed pitch about the
// body's forward×up axis and by the smoothed yaw about the body's up axis,
// in the order yaw * pitch * current, and stores the result as the new
// target.
func (c *Controller) ComposeTargetOrientation(current physics.Rotator) physics.Rotator {
	q := current.Quat()
	forward := q.Rotate(physics.AxisForward)
	up := q.Rotate(physics.AxisUp)
	pitchAxis := forward.Cross(up)

	pitchDelta := mgl64.QuatRotate(mgl64.DegToRad(c.smoothedPitch), pitchAxis)
	yawDelta := mgl64.QuatRotate(mgl64.DegToRad(c.smoothedYaw), up)

	composed := yawDelta.Mul(pitchDelta).Mul(q).Normalize()
	c.target = physics.RotatorFromQuat(composed)
	return c.target
}

// InterpolateOrientation eases current toward the target, then applies
// and decays roll velocity outside the deadband. A suspended controller
// returns current untouched.
func (c *Controller) InterpolateOrientation(current physics.Rotator, deltaTime float64) physics.Rotator {
	if c.suspended {
		return current
	}

	next := physics.RInterpTo(current, c.target, deltaTime, c.profile.OrientationRate)

	if math.Abs(c.rollVelocity) > c.profile.RollDeadband {
		next.Roll += c.rollVelocity * deltaTime
		c.rollVelocity = physics.FInterpTo(c.rollVelocity, 0, deltaTime, c.profile.RollDecayRate)
	}

	return next
}

// Tick runs one frame of the orientation model and returns the new
// orientation.
func (c *Controller) Tick(current physics.Rotator, deltaTime float64) physics.Rotator {
	c.UpdateSmoothedInput(deltaTime)
	c.ComposeTargetOrientation(current)
	return c.InterpolateOrientation(current, deltaTime)
}

// ThrustDelta converts a local thrust sample into a world-space velocity
// change for a body facing orientation. The result is not speed limited.
func (c *Controller) ThrustDelta(orientation physics.Rotator, input mgl64.Vec3, deltaTime float64) mgl64.Vec3 {
	forward := orientation.Forward().Mul(input[0])
	right := orientation.Right().Mul(input[1])
	up := orientation.Up().Mul(input[2] * c.profile.VerticalThrustMultiplier)

	return forward.Add(right).Add(up).Mul(c.profile.ThrustScale * deltaTime)
}

// SmoothedInput returns the smoothed pitch and yaw in degrees per frame
func (c *Controller) SmoothedInput() (pitch, yaw float64) {
	return c.smoothedPitch, c.smoothedYaw
}

// PendingInput returns the unconsumed look sample
func (c *Controller) PendingInput() (pitch, yaw float64) {
	return c.pitchInput, c.yawInput
}

// RollVelocity returns the current roll rate in degrees per second
func (c *Controller) RollVelocity() float64 {
	return c.rollVelocity
}

// Target returns the orientation the body is easing toward
func (c *Controller) Target() physics.Rotator {
	return c.target
}

// ResetTarget snaps the target to r, used after the body is teleported.
func (c *Controller) ResetTarget(r physics.Rotator) {
	c.target = r
}
