// pkg/physics/vector.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Tolerances shared by the vector and rotator helpers
const (
	SmallNumber      = 1e-8
	KindaSmallNumber = 1e-4
)

// World basis. X is forward, Y is right and Z is up.
var (
	AxisForward = mgl64.Vec3{1, 0, 0}
	AxisRight   = mgl64.Vec3{0, 1, 0}
	AxisUp      = mgl64.Vec3{0, 0, 1}
)

// LengthSquared returns magnitude squared (optimization for comparisons)
func LengthSquared(v mgl64.Vec3) float64 {
	return v.Dot(v)
}

// Distance returns the distance between two points
func Distance(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// SafeNormal returns a unit vector in the same direction, or the zero vector
// when v is too short to normalize.
func SafeNormal(v mgl64.Vec3) mgl64.Vec3 {
	lenSq := LengthSquared(v)
	if lenSq < SmallNumber {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / math.Sqrt(lenSq))
}

// DirectionTo returns the unit direction from one point toward another.
// The second result is false when the points coincide and no direction exists.
func DirectionTo(from, to mgl64.Vec3) (mgl64.Vec3, bool) {
	dir := SafeNormal(to.Sub(from))
	if dir == (mgl64.Vec3{}) {
		return dir, false
	}
	return dir, true
}

// NearlyZero reports whether |f| <= tolerance
func NearlyZero(f, tolerance float64) bool {
	return math.Abs(f) <= tolerance
}

// VecNearlyEqual compares two vectors component-wise within tolerance
func VecNearlyEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return NearlyZero(a[0]-b[0], tolerance) &&
		NearlyZero(a[1]-b[1], tolerance) &&
		NearlyZero(a[2]-b[2], tolerance)
}
