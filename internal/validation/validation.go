package validation

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidInstrument is returned when an instrument name doesn't match the required format
	ErrInvalidInstrument = errors.New("invalid instrument name")

	// ErrInstrumentTooLong is returned when an instrument name is too long
	ErrInstrumentTooLong = errors.New("instrument name must be at most 64 characters")

	// ErrInvalidCoordinates is returned when a latitude/longitude pair is out of range
	ErrInvalidCoordinates = errors.New("coordinates out of range")

	// ErrInvalidRadius is returned when a search radius is not a positive number
	ErrInvalidRadius = errors.New("search radius must be a positive number of kilometers")

	// instrumentRegex validates instrument names: letters (including accented),
	// digits, spaces and hyphens.
	instrumentRegex = regexp.MustCompile(`^[\p{L}0-9][\p{L}0-9 -]*$`)
)

// NormalizeInstrument lowercases and trims an instrument name so that
// matching is case-insensitive across profiles and roles.
func NormalizeInstrument(instrument string) string {
	return strings.ToLower(strings.TrimSpace(instrument))
}

// ValidateInstrument validates a normalized instrument name.
func ValidateInstrument(instrument string) error {
	if len(instrument) == 0 {
		return ErrInvalidInstrument
	}
	if len(instrument) > 64 {
		return ErrInstrumentTooLong
	}
	if !instrumentRegex.MatchString(instrument) {
		return ErrInvalidInstrument
	}
	return nil
}

// ValidateCoordinates checks that a latitude/longitude pair is within range.
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// ValidateRadiusKm checks that a search radius is positive and sane.
func ValidateRadiusKm(radius float64) error {
	if radius <= 0 || radius > 10000 {
		return ErrInvalidRadius
	}
	return nil
}
