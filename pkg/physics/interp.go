// pkg/physics/interp.go
package physics

import "github.com/go-gl/mathgl/mgl64"

// FInterpTo moves current toward target by a dt-scaled fraction of the
// remaining distance. The fraction is clamped to [0, 1] so the result never
// overshoots. A non-positive speed jumps straight to target.
func FInterpTo(current, target, deltaTime, speed float64) float64 {
	if speed <= 0 {
		return target
	}

	dist := target - current
	if dist*dist < SmallNumber {
		return target
	}

	alpha := mgl64.Clamp(deltaTime*speed, 0, 1)
	return current + dist*alpha
}

// RInterpTo is FInterpTo for rotators. Each axis travels the shortest way
// around and the result is normalized.
func RInterpTo(current, target Rotator, deltaTime, speed float64) Rotator {
	if deltaTime == 0 || current == target {
		return current
	}
	if speed <= 0 {
		return target
	}

	delta := target.Sub(current).Normalized()
	if delta.IsNearlyZero(KindaSmallNumber) {
		return target
	}

	alpha := mgl64.Clamp(deltaTime*speed, 0, 1)
	return current.Add(delta.Scale(alpha)).Normalized()
}
