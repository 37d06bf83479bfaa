package invites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides invite persistence
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new invite store
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ListInvitedMusicianIDs returns which of the given musicians already hold an
// invite for the given gig role.
func (s *Store) ListInvitedMusicianIDs(ctx context.Context, gigID, gigRoleID uuid.UUID, musicianIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	invited := make(map[uuid.UUID]bool)
	if len(musicianIDs) == 0 {
		return invited, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT musician_id
		FROM invites
		WHERE gig_id = $1
		  AND gig_role_id = $2
		  AND musician_id = ANY($3)
	`, gigID, gigRoleID, musicianIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing invites: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan invited musician: %w", err)
		}
		invited[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating existing invites: %w", err)
	}

	return invited, nil
}

// InsertPending inserts a pending invite for the tuple. Returns false when the
// tuple already exists; the unique index on (gig_id, gig_role_id, musician_id)
// makes concurrent inserts race-safe.
func (s *Store) InsertPending(ctx context.Context, gigID, gigRoleID, contractorID, musicianID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO invites (gig_id, gig_role_id, contractor_id, musician_id, status, invited_at)
		VALUES ($1, $2, $3, $4, 'pending', NOW())
		ON CONFLICT ON CONSTRAINT invites_gig_role_musician_key DO NOTHING
	`, gigID, gigRoleID, contractorID, musicianID)
	if err != nil {
		return false, fmt.Errorf("failed to insert invite: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// FindByTuple retrieves the invite for a (gig, role, musician) tuple.
func (s *Store) FindByTuple(ctx context.Context, gigID, gigRoleID, musicianID uuid.UUID) (*Invite, error) {
	var inv Invite
	err := s.pool.QueryRow(ctx, `
		SELECT id, gig_id, gig_role_id, contractor_id, musician_id, status, invited_at, responded_at
		FROM invites
		WHERE gig_id = $1 AND gig_role_id = $2 AND musician_id = $3
	`, gigID, gigRoleID, musicianID).Scan(
		&inv.ID,
		&inv.GigID,
		&inv.GigRoleID,
		&inv.ContractorID,
		&inv.MusicianID,
		&inv.Status,
		&inv.InvitedAt,
		&inv.RespondedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to load invite: %w", err)
	}

	return &inv, nil
}

// GetByID retrieves an invite by ID
func (s *Store) GetByID(ctx context.Context, inviteID uuid.UUID) (*Invite, error) {
	var inv Invite
	err := s.pool.QueryRow(ctx, `
		SELECT id, gig_id, gig_role_id, contractor_id, musician_id, status, invited_at, responded_at
		FROM invites
		WHERE id = $1
	`, inviteID).Scan(
		&inv.ID,
		&inv.GigID,
		&inv.GigRoleID,
		&inv.ContractorID,
		&inv.MusicianID,
		&inv.Status,
		&inv.InvitedAt,
		&inv.RespondedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to load invite: %w", err)
	}

	return &inv, nil
}

// ListForMusician returns a musician's invites, newest first.
func (s *Store) ListForMusician(ctx context.Context, musicianID uuid.UUID) ([]Invite, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, gig_id, gig_role_id, contractor_id, musician_id, status, invited_at, responded_at
		FROM invites
		WHERE musician_id = $1
		ORDER BY invited_at DESC
	`, musicianID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var out []Invite
	for rows.Next() {
		var inv Invite
		if err := rows.Scan(
			&inv.ID,
			&inv.GigID,
			&inv.GigRoleID,
			&inv.ContractorID,
			&inv.MusicianID,
			&inv.Status,
			&inv.InvitedAt,
			&inv.RespondedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invites: %w", err)
	}

	return out, nil
}

// Respond marks a pending invite accepted or declined on behalf of its musician.
func (s *Store) Respond(ctx context.Context, inviteID, musicianID uuid.UUID, status Status, at time.Time) (*Invite, error) {
	inv, err := s.GetByID(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if inv.MusicianID != musicianID {
		return nil, ErrNotInviteRecipient
	}
	if inv.Status != StatusPending {
		return nil, ErrInviteNotPending
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE invites
		SET status = $2, responded_at = $3
		WHERE id = $1 AND status = 'pending'
	`, inviteID, status, at)
	if err != nil {
		return nil, fmt.Errorf("failed to update invite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Lost a race with a concurrent response or cancellation.
		return nil, ErrInviteNotPending
	}

	inv.Status = status
	inv.RespondedAt = &at
	return inv, nil
}
