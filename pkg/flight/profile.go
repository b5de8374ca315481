// Package flight implements the orientation and thrust model shared by every
// controllable flyer: look smoothing, quaternion composition of pitch/yaw
// deltas, roll inertia, thrust integration and the spaceship landing state
// machine.
package flight

// Default tuning shared by all flyers.
const (
	DefaultLookSensitivity  = 10.0
	DefaultSmoothingFactor  = 0.2
	DefaultOrientationRate  = 2.5
	DefaultRollAcceleration = 300.0 // deg/s per unit input per second
	DefaultMaxRollVelocity  = 800.0 // deg/s
	DefaultRollDeadband     = 0.1   // deg/s
	DefaultRollDecayRate    = 1.0
	DefaultDeceleration     = 200.0
)

// Body-specific tuning.
const (
	CharacterThrustScale = 400.0
	CharacterMaxSpeed    = 600.0

	SpaceshipThrustScale       = 4000.0
	SpaceshipVerticalThrustMul = 5.0
	SpaceshipMaxSpeed          = 1000.0
)

// Landing defaults.
const (
	DefaultProbeDistance    = 500.0
	DefaultMaxLandingSpeed  = 100.0
	DefaultSurfaceClearance = 100.0
	DefaultTakeOffLift      = 100.0
)

// Profile bundles every constant a flyer's controller and integrator use.
type Profile struct {
	Name                     string         `yaml:"name"`
	LookSensitivity          float64        `yaml:"look_sensitivity"`
	SmoothingFactor          float64        `yaml:"smoothing_factor"`
	OrientationRate          float64        `yaml:"orientation_rate"`
	RollAcceleration         float64        `yaml:"roll_acceleration"`
	MaxRollVelocity          float64        `yaml:"max_roll_velocity"`
	RollDeadband             float64        `yaml:"roll_deadband"`
	RollDecayRate            float64        `yaml:"roll_decay_rate"`
	ThrustScale              float64        `yaml:"thrust_scale"`
	VerticalThrustMultiplier float64        `yaml:"vertical_thrust_multiplier"`
	MaxSpeed                 float64        `yaml:"max_speed"`
	Deceleration             float64        `yaml:"deceleration"`
	Landing                  *LandingParams `yaml:"landing,omitempty"`
}

// LandingParams configures the landing probe and the landed snap.
type LandingParams struct {
	ProbeDistance    float64 `yaml:"probe_distance"`
	MaxLandingSpeed  float64 `yaml:"max_landing_speed"`
	SurfaceClearance float64 `yaml:"surface_clearance"`
	TakeOffLift      float64 `yaml:"take_off_lift"`
}

// DefaultLandingParams returns the spaceship landing tuning
func DefaultLandingParams() LandingParams {
	return LandingParams{
		ProbeDistance:    DefaultProbeDistance,
		MaxLandingSpeed:  DefaultMaxLandingSpeed,
		SurfaceClearance: DefaultSurfaceClearance,
		TakeOffLift:      DefaultTakeOffLift,
	}
}

// CharacterProfile returns the tuning of the flying player character.
func CharacterProfile() Profile {
	p := baseProfile("character")
	p.ThrustScale = CharacterThrustScale
	p.VerticalThrustMultiplier = 1
	p.MaxSpeed = CharacterMaxSpeed
	return p
}

// SpaceshipProfile returns the tuning of the landable spaceship.
func SpaceshipProfile() Profile {
	p := baseProfile("spaceship")
	p.ThrustScale = SpaceshipThrustScale
	p.VerticalThrustMultiplier = SpaceshipVerticalThrustMul
	p.MaxSpeed = SpaceshipMaxSpeed
	landing := DefaultLandingParams()
	p.Landing = &landing
	return p
}

func baseProfile(name string) Profile {
	return Profile{
		Name:             name,
		LookSensitivity:  DefaultLookSensitivity,
		SmoothingFactor:  DefaultSmoothingFactor,
		OrientationRate:  DefaultOrientationRate,
		RollAcceleration: DefaultRollAcceleration,
		MaxRollVelocity:  DefaultMaxRollVelocity,
		RollDeadband:     DefaultRollDeadband,
		RollDecayRate:    DefaultRollDecayRate,
		Deceleration:     DefaultDeceleration,
	}
}

// SmoothingSpeed is the interpolation speed derived from the smoothing factor.
// A non-positive factor disables smoothing.
func (p Profile) SmoothingSpeed() float64 {
	if p.SmoothingFactor <= 0 {
		return 0
	}
	return 0.5 / p.SmoothingFactor
}

// Landable reports whether the profile carries landing parameters
func (p Profile) Landable() bool {
	return p.Landing != nil
}
