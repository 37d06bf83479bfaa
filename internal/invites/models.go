package invites

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInviteNotFound is returned when an invite does not exist
	ErrInviteNotFound = errors.New("invite not found")

	// ErrNotInviteRecipient is returned when a caller tries to respond to
	// someone else's invite
	ErrNotInviteRecipient = errors.New("caller is not the invite's musician")

	// ErrInviteNotPending is returned when responding to a settled invite
	ErrInviteNotPending = errors.New("invite is not pending")
)

// Status is the lifecycle state of an invite.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
)

// Invite links a musician to a gig role. At most one invite exists per
// (gig, role, musician) tuple; invites are never hard-deleted.
type Invite struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	GigID        uuid.UUID  `db:"gig_id" json:"gig_id"`
	GigRoleID    uuid.UUID  `db:"gig_role_id" json:"gig_role_id"`
	ContractorID uuid.UUID  `db:"contractor_id" json:"contractor_id"`
	MusicianID   uuid.UUID  `db:"musician_id" json:"musician_id"`
	Status       Status     `db:"status" json:"status"`
	InvitedAt    time.Time  `db:"invited_at" json:"invited_at"`
	RespondedAt  *time.Time `db:"responded_at" json:"responded_at"`
}
