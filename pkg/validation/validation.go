// Package validation checks values that enter the simulation from outside:
// input events, entity names from tuning files and scenario scripts.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/opd-ai/go-gravitywell/pkg/flight"
)

// Size and content limits
const (
	MaxEntityNameLen = 32
	MaxScriptSize    = 64 * 1024 // 64KB
)

// ErrInvalidInput is wrapped by every ValidateInput and ValidateScript failure
var ErrInvalidInput = errors.New("invalid input")

// Allow alphanumeric, spaces, hyphens, underscores and basic punctuation
var validEntityNameChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.()]+$`)

// ValidateInput rejects input events of unknown kind or with non-finite
// axis values. Magnitudes are not limited.
func ValidateInput(in flight.Input) error {
	switch in.Kind {
	case flight.Look, flight.Roll, flight.Thrust:
	default:
		return fmt.Errorf("%w: unknown kind %s", ErrInvalidInput, in.Kind)
	}

	for i, v := range in.Axis {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s axis %d is %v", ErrInvalidInput, in.Kind, i, v)
		}
	}
	return nil
}

// ValidateEntityName validates a planet or spawn name and returns it trimmed.
func ValidateEntityName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("entity name cannot be empty")
	}

	if len(name) > MaxEntityNameLen {
		return "", fmt.Errorf("entity name too long: %d characters (max %d)", len(name), MaxEntityNameLen)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("entity name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("entity name cannot be only whitespace")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("entity name contains control characters")
		}
	}

	if !validEntityNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("entity name contains invalid characters (only alphanumeric, spaces, hyphens, underscores, dots and parentheses allowed)")
	}

	return trimmed, nil
}

// ValidateScript checks scenario source against size and encoding limits
func ValidateScript(src []byte) error {
	if len(src) > MaxScriptSize {
		return fmt.Errorf("%w: script too large: %d bytes (max %d)", ErrInvalidInput, len(src), MaxScriptSize)
	}
	if !utf8.Valid(src) {
		return fmt.Errorf("%w: script is not valid UTF-8", ErrInvalidInput)
	}
	return nil
}
