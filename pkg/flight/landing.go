package flight

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-gravitywell/pkg/physics"
)

// State is the landing state of a landable body
type State int

const (
	Flying State = iota
	Landed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Flying:
		return "flying"
	case Landed:
		return "landed"
	default:
		return "unknown"
	}
}

// Body is the part of a landable entity the landing machine mutates.
type Body interface {
	GetPosition() mgl64.Vec3
	SetPosition(position mgl64.Vec3)
	GetRotation() physics.Rotator
	SetRotation(rotation physics.Rotator)
	SpeedSquared() float64
	StopMovement()
	SetMovementActive(active bool)
}

// Prober casts a segment against world surfaces and reports the nearest hit.
type Prober interface {
	Probe(start, end mgl64.Vec3) (physics.HitResult, bool)
}

// Landing is the Flying/Landed state machine. Landed is left only through
// TakeOff.
type Landing struct {
	params  LandingParams
	state   State
	lastHit physics.HitResult
}

// NewLanding returns a machine in the Flying state
func NewLanding(params LandingParams) *Landing {
	return &Landing{params: params, state: Flying}
}

// State returns the current state
func (l *Landing) State() State { return l.state }

// Params returns the landing tuning
func (l *Landing) Params() LandingParams { return l.params }

// SetParams replaces the landing tuning
func (l *Landing) SetParams(params LandingParams) { l.params = params }

// LastHit returns the probe hit that caused the most recent landing
func (l *Landing) LastHit() physics.HitResult { return l.lastHit }

// ProbeSegment returns the segment cast along the body's local down axis.
func (l *Landing) ProbeSegment(body Body) (start, end mgl64.Vec3) {
	start = body.GetPosition()
	down := body.GetRotation().Up().Mul(-l.params.ProbeDistance)
	return start, start.Add(down)
}

// CheckForLanding probes below the body and lands it when a surface is in
// range and the body is slower than the landing speed. It reports whether
// the body landed on this call.
func (l *Landing) CheckForLanding(body Body, prober Prober) bool {
	if l.state != Flying || prober == nil {
		return false
	}

	start, end := l.ProbeSegment(body)
	hit, ok := prober.Probe(start, end)
	if !ok {
		return false
	}

	maxSpeed := l.params.MaxLandingSpeed
	if body.SpeedSquared() >= maxSpeed*maxSpeed {
		return false
	}

	l.Land(body, hit)
	return true
}

// Land stops the body and snaps it upright on the hit surface, offset by
// the surface clearance along the normal.
func (l *Landing) Land(body Body, hit physics.HitResult) {
	l.state = Landed
	l.lastHit = hit

	body.StopMovement()
	body.SetMovementActive(false)

	body.SetRotation(physics.RotatorFromZ(hit.Normal))
	body.SetPosition(hit.Point.Add(hit.Normal.Mul(l.params.SurfaceClearance)))
}

// TakeOff returns the body to flight and lifts it along world up. It
// reports false when the body was already flying.
func (l *Landing) TakeOff(body Body) bool {
	if l.state != Landed {
		return false
	}

	l.state = Flying
	body.SetMovementActive(true)
	body.SetPosition(body.GetPosition().Add(physics.AxisUp.Mul(l.params.TakeOffLift)))
	return true
}
