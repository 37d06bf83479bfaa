package musicians

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is a musician's matching-relevant profile snapshot.
type Candidate struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Latitude  *float64  `db:"latitude" json:"latitude"`
	Longitude *float64  `db:"longitude" json:"longitude"`

	// MaxRadiusKm is the musician's declared maximum search radius.
	MaxRadiusKm *float64 `db:"max_radius_km" json:"max_radius_km"`

	// RadiusOverrideKm takes precedence over MaxRadiusKm when set.
	RadiusOverrideKm *float64 `db:"radius_override_km" json:"radius_override_km"`

	Instruments []string `db:"instruments" json:"instruments"`
}

// HasCoordinates reports whether the candidate carries a usable coordinate pair.
func (c *Candidate) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Block is a time window during which a musician is unavailable.
type Block struct {
	ID         uuid.UUID `db:"id" json:"id"`
	MusicianID uuid.UUID `db:"musician_id" json:"musician_id"`
	StartsAt   time.Time `db:"starts_at" json:"starts_at"`
	EndsAt     time.Time `db:"ends_at" json:"ends_at"`
}

// Contains reports whether t falls within the block's window (inclusive).
func (b *Block) Contains(t time.Time) bool {
	return !t.Before(b.StartsAt) && !t.After(b.EndsAt)
}

// Profile is the full musician profile row behind the profile endpoints.
type Profile struct {
	UserID           uuid.UUID `db:"user_id" json:"user_id"`
	Latitude         *float64  `db:"latitude" json:"latitude"`
	Longitude        *float64  `db:"longitude" json:"longitude"`
	MaxRadiusKm      *float64  `db:"max_radius_km" json:"max_radius_km"`
	RadiusOverrideKm *float64  `db:"radius_override_km" json:"radius_override_km"`
	Instruments      []string  `db:"instruments" json:"instruments"`
	RegionLabel      *string   `db:"region_label" json:"region_label"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
