package gigs

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a gig.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// IsValid reports whether s is a known gig status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Gig is a bookable event posted by a contractor.
type Gig struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ContractorID uuid.UUID `db:"contractor_id" json:"contractor_id"`
	Title        string    `db:"title" json:"title"`
	Status       Status    `db:"status" json:"status"`
	StartsAt     time.Time `db:"starts_at" json:"starts_at"`
	Latitude     *float64  `db:"latitude" json:"latitude"`
	Longitude    *float64  `db:"longitude" json:"longitude"`
	RegionLabel  *string   `db:"region_label" json:"region_label"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// HasCoordinates reports whether the gig carries a usable coordinate pair.
func (g *Gig) HasCoordinates() bool {
	return g.Latitude != nil && g.Longitude != nil
}

// Role is one instrument slot within a gig. A nil instrument means the
// contractor has not decided yet; such roles are skipped by matching.
type Role struct {
	ID         uuid.UUID `db:"id" json:"id"`
	GigID      uuid.UUID `db:"gig_id" json:"gig_id"`
	Instrument *string   `db:"instrument" json:"instrument"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
