package flight

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// InputKind identifies which action an input event belongs to
type InputKind int

const (
	Look InputKind = iota
	Roll
	Thrust
)

// String returns the action name
func (k InputKind) String() string {
	switch k {
	case Look:
		return "look"
	case Roll:
		return "roll"
	case Thrust:
		return "thrust"
	default:
		return fmt.Sprintf("InputKind(%d)", int(k))
	}
}

// Input is one raw input event. Look reads X as yaw and Y as pitch, Roll
// reads X, and Thrust reads X forward, Y right and Z up. Values are not
// clamped.
type Input struct {
	Kind InputKind
	Axis mgl64.Vec3
}

// LookInput builds a 2-axis look event
func LookInput(x, y float64) Input {
	return Input{Kind: Look, Axis: mgl64.Vec3{x, y, 0}}
}

// RollInput builds a 1-axis roll event
func RollInput(x float64) Input {
	return Input{Kind: Roll, Axis: mgl64.Vec3{x, 0, 0}}
}

// ThrustInput builds a 3-axis thrust event
func ThrustInput(forward, right, up float64) Input {
	return Input{Kind: Thrust, Axis: mgl64.Vec3{forward, right, up}}
}
