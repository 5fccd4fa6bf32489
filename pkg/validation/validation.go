// Package validation checks numeric and textual inputs before they reach the
// simulation, where a single NaN would spread through every pose.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits applied to configuration and step inputs
const (
	MaxBodyNameLen = 32
	MaxDeltaTime   = 1.0 // seconds; anything longer is a host bug, not a tick
	MaxArenaSize   = 1e7
)

// ErrInvalidDeltaTime is returned for a negative, NaN or infinite delta time.
var ErrInvalidDeltaTime = errors.New("invalid delta time")

// Body names may contain letters, digits, spaces, hyphens, underscores and dots
var validBodyNameChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.]+$`)

// ValidateDeltaTime rejects delta times that would poison the step math.
func ValidateDeltaTime(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: %v is not finite", ErrInvalidDeltaTime, dt)
	}
	if dt < 0 {
		return fmt.Errorf("%w: %v is negative", ErrInvalidDeltaTime, dt)
	}
	if dt > MaxDeltaTime {
		return fmt.Errorf("%w: %v exceeds %v seconds", ErrInvalidDeltaTime, dt, MaxDeltaTime)
	}
	return nil
}

// ValidateSpeed checks that a linear or angular speed is finite and non-negative.
func ValidateSpeed(field string, speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return fmt.Errorf("%s must be finite, got %v", field, speed)
	}
	if speed < 0 {
		return fmt.Errorf("%s cannot be negative: %v", field, speed)
	}
	return nil
}

// ValidateArenaSize checks the full width and height of the arena.
func ValidateArenaSize(width, height float64) error {
	for _, dim := range []struct {
		name  string
		value float64
	}{{"width", width}, {"height", height}} {
		if math.IsNaN(dim.value) || math.IsInf(dim.value, 0) || dim.value <= 0 {
			return fmt.Errorf("arena %s must be a positive finite number, got %v", dim.name, dim.value)
		}
		if dim.value > MaxArenaSize {
			return fmt.Errorf("arena %s too large: %v (max %v)", dim.name, dim.value, MaxArenaSize)
		}
	}
	return nil
}

// ValidateCoordinate checks that a configured position component is finite.
func ValidateCoordinate(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s must be finite, got %v", field, value)
	}
	return nil
}

// ValidateBodyName validates and trims a body name
func ValidateBodyName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("body name cannot be empty")
	}

	if len(name) > MaxBodyNameLen {
		return "", fmt.Errorf("body name too long: %d characters (max %d)", len(name), MaxBodyNameLen)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("body name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("body name cannot be only whitespace")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("body name contains control characters")
		}
	}

	if !validBodyNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("body name contains invalid characters (only alphanumeric, spaces, hyphens, underscores and dots allowed)")
	}

	return trimmed, nil
}

// ValidateTickCount validates the number of ticks a headless run executes.
func ValidateTickCount(ticks int) error {
	if ticks < 0 {
		return fmt.Errorf("tick count cannot be negative: %d", ticks)
	}
	return nil
}
