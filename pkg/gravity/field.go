// Package gravity implements the spherical gravity well planets exert on
// overlapping bodies.
package gravity

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-gravitywell/pkg/physics"
)

const (
	// DefaultStrength is 9.8 scaled to world units.
	DefaultStrength = 9.8 * 50
	// DefaultOrientationRate is how fast flyers are turned upright.
	DefaultOrientationRate = 0.05
)

// Body is anything with a position the field can pull on.
type Body interface {
	GetPosition() mgl64.Vec3
}

// Flyer is a controllable body steered by direct velocity changes.
type Flyer interface {
	Body
	GetRotation() physics.Rotator
	SetRotation(rotation physics.Rotator)
	AddVelocity(dv mgl64.Vec3)
	MovementActive() bool
}

// Simulated is a free rigid body integrated from applied forces.
type Simulated interface {
	Body
	IsSimulatingPhysics() bool
	AddForce(force mgl64.Vec3, accelChange bool)
}

// Field is a spherical trigger volume that attracts bodies toward its center.
type Field struct {
	Center          mgl64.Vec3
	Radius          float64
	Strength        float64
	OrientationRate float64
}

// NewField returns a field with the default strength and orientation rate
func NewField(center mgl64.Vec3, radius float64) *Field {
	return &Field{
		Center:          center,
		Radius:          radius,
		Strength:        DefaultStrength,
		OrientationRate: DefaultOrientationRate,
	}
}

// Volume returns the trigger sphere used for overlap queries
func (f *Field) Volume() physics.Sphere {
	return physics.Sphere{Center: f.Center, Radius: f.Radius}
}

// Result counts what one Apply call did.
type Result struct {
	Flyers  int
	Bodies  int
	Skipped int
}

// Total is the number of bodies that received a pull
func (r Result) Total() int {
	return r.Flyers + r.Bodies
}

// Apply pulls every body toward the center for one tick. Flyers get a
// velocity change and are eased upright relative to the field, rigid bodies
// get an acceleration-change force. Bodies at the exact center, landed
// flyers and bodies of neither kind are skipped.
func (f *Field) Apply(bodies []Body, deltaTime float64) Result {
	var res Result

	for _, body := range bodies {
		dir, ok := physics.DirectionTo(body.GetPosition(), f.Center)
		if !ok {
			res.Skipped++
			continue
		}

		switch b := body.(type) {
		case Flyer:
			if !b.MovementActive() {
				res.Skipped++
				continue
			}
			f.pullFlyer(b, dir, deltaTime)
			res.Flyers++
		case Simulated:
			if !b.IsSimulatingPhysics() {
				res.Skipped++
				continue
			}
			b.AddForce(dir.Mul(f.Strength), true)
			res.Bodies++
		default:
			res.Skipped++
		}
	}

	return res
}

func (f *Field) pullFlyer(b Flyer, dir mgl64.Vec3, deltaTime float64) {
	b.AddVelocity(dir.Mul(f.Strength * deltaTime))

	current := b.GetRotation()
	upright := physics.RotatorFromZX(dir.Mul(-1), current.Forward())
	b.SetRotation(physics.RInterpTo(current, upright, deltaTime, f.OrientationRate))
}
