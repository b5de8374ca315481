// pkg/physics/rotator.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// singularityThreshold guards the pitch = ±90° gimbal case when converting
// a quaternion back to Euler angles.
const singularityThreshold = 0.4999995

// Rotator is an orientation expressed as Euler angles in degrees.
// Positive pitch raises the nose, positive yaw turns toward +Y and
// positive roll lowers the right wing.
type Rotator struct {
	Pitch float64 `yaml:"pitch"`
	Yaw   float64 `yaml:"yaw"`
	Roll  float64 `yaml:"roll"`
}

// Add returns the component-wise sum of two rotators
func (r Rotator) Add(other Rotator) Rotator {
	return Rotator{
		Pitch: r.Pitch + other.Pitch,
		Yaw:   r.Yaw + other.Yaw,
		Roll:  r.Roll + other.Roll,
	}
}

// Sub returns the component-wise difference between two rotators
func (r Rotator) Sub(other Rotator) Rotator {
	return Rotator{
		Pitch: r.Pitch - other.Pitch,
		Yaw:   r.Yaw - other.Yaw,
		Roll:  r.Roll - other.Roll,
	}
}

// Scale multiplies every axis by a scalar value
func (r Rotator) Scale(factor float64) Rotator {
	return Rotator{
		Pitch: r.Pitch * factor,
		Yaw:   r.Yaw * factor,
		Roll:  r.Roll * factor,
	}
}

// Normalized wraps every axis into (-180, 180].
func (r Rotator) Normalized() Rotator {
	return Rotator{
		Pitch: NormalizeAxis(r.Pitch),
		Yaw:   NormalizeAxis(r.Yaw),
		Roll:  NormalizeAxis(r.Roll),
	}
}

// IsNearlyZero reports whether every wrapped axis is within tolerance of zero
func (r Rotator) IsNearlyZero(tolerance float64) bool {
	return NearlyZero(NormalizeAxis(r.Pitch), tolerance) &&
		NearlyZero(NormalizeAxis(r.Yaw), tolerance) &&
		NearlyZero(NormalizeAxis(r.Roll), tolerance)
}

// Equals compares two rotators modulo full turns
func (r Rotator) Equals(other Rotator, tolerance float64) bool {
	return r.Sub(other).IsNearlyZero(tolerance)
}

// NormalizeAxis wraps an angle in degrees into (-180, 180].
func NormalizeAxis(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	if angle > 180 {
		angle -= 360
	}
	return angle
}

// Quat converts the rotator to a unit quaternion (yaw, then pitch, then roll).
func (r Rotator) Quat() mgl64.Quat {
	halfRad := math.Pi / 360

	sp, cp := math.Sincos(math.Mod(r.Pitch, 360) * halfRad)
	sy, cy := math.Sincos(math.Mod(r.Yaw, 360) * halfRad)
	sr, cr := math.Sincos(math.Mod(r.Roll, 360) * halfRad)

	return mgl64.Quat{
		W: cr*cp*cy + sr*sp*sy,
		V: mgl64.Vec3{
			cr*sp*sy - sr*cp*cy,
			-cr*sp*cy - sr*cp*sy,
			cr*cp*sy - sr*sp*cy,
		},
	}
}

// RotatorFromQuat converts a unit quaternion back to Euler angles.
func RotatorFromQuat(q mgl64.Quat) Rotator {
	x, y, z, w := q.V[0], q.V[1], q.V[2], q.W

	singularity := z*x - w*y
	yawY := 2 * (w*z + x*y)
	yawX := 1 - 2*(y*y+z*z)
	yaw := mgl64.RadToDeg(math.Atan2(yawY, yawX))

	switch {
	case singularity < -singularityThreshold:
		return Rotator{
			Pitch: -90,
			Yaw:   yaw,
			Roll:  NormalizeAxis(-yaw - 2*mgl64.RadToDeg(math.Atan2(x, w))),
		}
	case singularity > singularityThreshold:
		return Rotator{
			Pitch: 90,
			Yaw:   yaw,
			Roll:  NormalizeAxis(yaw - 2*mgl64.RadToDeg(math.Atan2(x, w))),
		}
	}

	return Rotator{
		Pitch: mgl64.RadToDeg(math.Asin(2 * singularity)),
		Yaw:   yaw,
		Roll:  mgl64.RadToDeg(math.Atan2(-2*(w*x+y*z), 1-2*(x*x+y*y))),
	}
}

// Forward returns the body X axis in world space
func (r Rotator) Forward() mgl64.Vec3 {
	return r.Quat().Rotate(AxisForward)
}

// Right returns the body Y axis in world space
func (r Rotator) Right() mgl64.Vec3 {
	return r.Quat().Rotate(AxisRight)
}

// Up returns the body Z axis in world space
func (r Rotator) Up() mgl64.Vec3 {
	return r.Quat().Rotate(AxisUp)
}

// RotatorFromZ returns an orientation whose up axis points along z.
// Forward is chosen perpendicular to z using world up (or world forward
// when z is nearly vertical) as the reference.
func RotatorFromZ(z mgl64.Vec3) Rotator {
	newZ := SafeNormal(z)
	ref := AxisUp
	if math.Abs(newZ[2]) >= 1-KindaSmallNumber {
		ref = AxisForward
	}
	newX := SafeNormal(ref.Cross(newZ))
	newY := newZ.Cross(newX)
	return rotatorFromAxes(newX, newY, newZ)
}

// RotatorFromZX returns an orientation whose up axis points along z and
// whose forward axis is as close to x as possible.
func RotatorFromZX(z, x mgl64.Vec3) Rotator {
	newZ := SafeNormal(z)
	norm := SafeNormal(x)
	if math.Abs(newZ.Dot(norm)) > 1-KindaSmallNumber {
		if math.Abs(newZ[2]) < 1-KindaSmallNumber {
			norm = AxisUp
		} else {
			norm = AxisForward
		}
	}
	newY := SafeNormal(newZ.Cross(norm))
	newX := newY.Cross(newZ)
	return rotatorFromAxes(newX, newY, newZ)
}

// rotatorFromAxes extracts Euler angles from an orthonormal basis.
func rotatorFromAxes(x, y, z mgl64.Vec3) Rotator {
	r := Rotator{
		Pitch: mgl64.RadToDeg(math.Atan2(x[2], math.Sqrt(x[0]*x[0]+x[1]*x[1]))),
		Yaw:   mgl64.RadToDeg(math.Atan2(x[1], x[0])),
	}
	sy := r.Right()
	r.Roll = mgl64.RadToDeg(math.Atan2(z.Dot(sy), y.Dot(sy)))
	return r
}
