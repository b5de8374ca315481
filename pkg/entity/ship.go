// pkg/entity/ship.go
package entity

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-gravitywell/pkg/flight"
	"github.com/opd-ai/go-gravitywell/pkg/physics"
)

// Spaceship is a flyer that can land on planet surfaces
type Spaceship struct {
	Flyer
	Landing *flight.Landing
}

// NewSpaceship creates a spaceship. A profile without landing parameters
// gets the default ones.
func NewSpaceship(name string, position mgl64.Vec3, rotation physics.Rotator, profile flight.Profile) *Spaceship {
	params := flight.DefaultLandingParams()
	if profile.Landing != nil {
		params = *profile.Landing
	}

	return &Spaceship{
		Flyer:   newFlyer(name, KindSpaceship, position, rotation, profile),
		Landing: flight.NewLanding(params),
	}
}

// FlightState returns Flying or Landed
func (s *Spaceship) FlightState() flight.State {
	return s.Landing.State()
}

// IsLanded reports whether the ship sits on a surface
func (s *Spaceship) IsLanded() bool {
	return s.Landing.State() == flight.Landed
}

// ReceiveInput routes input like any flyer, except that thrust while
// landed triggers a take-off instead of accelerating.
func (s *Spaceship) ReceiveInput(in flight.Input, deltaTime float64) {
	if in.Kind == flight.Thrust && s.IsLanded() {
		if s.Flight.Attached() {
			s.TakeOff()
		}
		return
	}
	s.Flyer.ReceiveInput(in, deltaTime)
}

// CheckForLanding probes below the ship and lands it when possible. It
// reports whether the ship landed on this call.
func (s *Spaceship) CheckForLanding(prober flight.Prober) bool {
	if !s.Landing.CheckForLanding(s, prober) {
		return false
	}
	s.Flight.Suspend()
	return true
}

// TakeOff lifts a landed ship back into flight. It reports false when the
// ship was already flying.
func (s *Spaceship) TakeOff() bool {
	if !s.Landing.TakeOff(s) {
		return false
	}
	s.Flight.Resume()
	return true
}

// SetProfile retunes the ship including its landing parameters
func (s *Spaceship) SetProfile(profile flight.Profile) {
	s.Flyer.SetProfile(profile)
	if profile.Landing != nil {
		s.Landing.SetParams(*profile.Landing)
	}
}
