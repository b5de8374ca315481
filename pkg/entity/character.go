// pkg/entity/character.go
package entity

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-gravitywell/pkg/flight"
	"github.com/opd-ai/go-gravitywell/pkg/physics"
)

// Character is the free-flying player character
type Character struct {
	Flyer
}

// NewCharacter creates a character using the given tuning
func NewCharacter(name string, position mgl64.Vec3, rotation physics.Rotator, profile flight.Profile) *Character {
	return &Character{
		Flyer: newFlyer(name, KindCharacter, position, rotation, profile),
	}
}
