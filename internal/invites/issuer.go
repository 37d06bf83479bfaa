package invites

import (
	"context"
	"errors"
	"fmt"

	"github.com/chamaomusico/gigmatch/internal/gigs"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GigSource yields gigs and their roles.
type GigSource interface {
	GetByID(ctx context.Context, gigID uuid.UUID) (*gigs.Gig, error)
	ListRoles(ctx context.Context, gigID uuid.UUID) ([]gigs.Role, error)
	GetRole(ctx context.Context, gigID, roleID uuid.UUID) (*gigs.Role, error)
}

// EligibilityFinder computes the eligible musician set for a gig role.
type EligibilityFinder interface {
	FindEligibleMusicians(ctx context.Context, gig *gigs.Gig, role *gigs.Role) ([]uuid.UUID, error)
}

// InviteStore persists invites.
type InviteStore interface {
	ListInvitedMusicianIDs(ctx context.Context, gigID, gigRoleID uuid.UUID, musicianIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	InsertPending(ctx context.Context, gigID, gigRoleID, contractorID, musicianID uuid.UUID) (bool, error)
	FindByTuple(ctx context.Context, gigID, gigRoleID, musicianID uuid.UUID) (*Invite, error)
}

// Notifier triggers downstream notification processing. Implementations must
// never block the caller.
type Notifier interface {
	EnqueueProcessNotifications(gigID uuid.UUID)
}

// Issuer turns eligible candidate sets into persisted invites, exactly once
// per (gig, role, musician) tuple.
type Issuer struct {
	gigs     GigSource
	matcher  EligibilityFinder
	store    InviteStore
	notifier Notifier
}

// NewIssuer creates a new invite issuer.
func NewIssuer(gigSource GigSource, matcher EligibilityFinder, store InviteStore, notifier Notifier) *Issuer {
	return &Issuer{
		gigs:     gigSource,
		matcher:  matcher,
		store:    store,
		notifier: notifier,
	}
}

// AutoCreateInvites matches every role of a published gig and inserts one
// pending invite per eligible musician not already invited. Returns the
// number of invites actually created.
//
// Only the gig's contractor may trigger auto-creation. A gig that is not
// published yields a no-op success. A failure scoped to one role is logged
// and skipped; the remaining roles are still processed.
func (i *Issuer) AutoCreateInvites(ctx context.Context, gigID, requestingUserID uuid.UUID) (int, error) {
	gig, err := i.gigs.GetByID(ctx, gigID)
	if err != nil {
		return 0, err
	}
	if gig.ContractorID != requestingUserID {
		return 0, gigs.ErrNotGigOwner
	}
	if gig.Status != gigs.StatusPublished {
		log.Info().
			Str("gig_id", gigID.String()).
			Str("status", string(gig.Status)).
			Msg("Gig is not published, skipping auto-invite creation")
		return 0, nil
	}

	roles, err := i.gigs.ListRoles(ctx, gigID)
	if err != nil {
		return 0, fmt.Errorf("failed to list roles: %w", err)
	}

	total := 0
	for _, role := range roles {
		created, err := i.createForRole(ctx, gig, &role)
		if err != nil {
			log.Warn().
				Err(err).
				Str("gig_id", gigID.String()).
				Str("role_id", role.ID.String()).
				Msg("Auto-invite creation failed for role, continuing with next role")
			continue
		}
		total += created
	}

	if total > 0 {
		i.notifier.EnqueueProcessNotifications(gigID)
	}

	log.Info().
		Str("gig_id", gigID.String()).
		Int("created", total).
		Msg("Auto-invite creation finished")

	return total, nil
}

// createForRole matches one role and inserts invites for the candidates not
// already invited. Returns the number of rows actually inserted.
func (i *Issuer) createForRole(ctx context.Context, gig *gigs.Gig, role *gigs.Role) (int, error) {
	candidates, err := i.matcher.FindEligibleMusicians(ctx, gig, role)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	invited, err := i.store.ListInvitedMusicianIDs(ctx, gig.ID, role.ID, candidates)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, musicianID := range candidates {
		if invited[musicianID] {
			continue
		}
		inserted, err := i.store.InsertPending(ctx, gig.ID, role.ID, gig.ContractorID, musicianID)
		if err != nil {
			log.Warn().
				Err(err).
				Str("gig_id", gig.ID.String()).
				Str("role_id", role.ID.String()).
				Str("musician_id", musicianID.String()).
				Msg("Invite insert failed, continuing with next candidate")
			continue
		}
		if inserted {
			created++
		}
	}

	return created, nil
}

// CreateManualInvite inserts a single invite for an explicit musician, with
// the same ownership checks and idempotency as auto-creation. Returns the
// invite and whether a new row was created: calling it twice with the same
// tuple yields the original invite and created=false.
func (i *Issuer) CreateManualInvite(ctx context.Context, gigID, gigRoleID, musicianID, requestingUserID uuid.UUID) (*Invite, bool, error) {
	gig, err := i.gigs.GetByID(ctx, gigID)
	if err != nil {
		return nil, false, err
	}
	if gig.ContractorID != requestingUserID {
		return nil, false, gigs.ErrNotGigOwner
	}

	if _, err := i.gigs.GetRole(ctx, gigID, gigRoleID); err != nil {
		return nil, false, err
	}

	existing, err := i.store.FindByTuple(ctx, gigID, gigRoleID, musicianID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrInviteNotFound) {
		return nil, false, err
	}

	inserted, err := i.store.InsertPending(ctx, gigID, gigRoleID, gig.ContractorID, musicianID)
	if err != nil {
		return nil, false, err
	}

	// Whether we won or lost the insert race, the row now exists.
	invite, err := i.store.FindByTuple(ctx, gigID, gigRoleID, musicianID)
	if err != nil {
		return nil, false, err
	}

	if inserted {
		i.notifier.EnqueueProcessNotifications(gigID)
	}

	return invite, inserted, nil
}
