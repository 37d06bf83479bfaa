package gigs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chamaomusico/gigmatch/internal/geo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrGigNotFound is returned when a gig does not exist
	ErrGigNotFound = errors.New("gig not found")

	// ErrRoleNotFound is returned when a gig role does not exist
	ErrRoleNotFound = errors.New("gig role not found")

	// ErrNotGigOwner is returned when a caller is not the gig's contractor
	ErrNotGigOwner = errors.New("caller is not the gig's contractor")

	// ErrInvalidTransition is returned for a disallowed status change
	ErrInvalidTransition = errors.New("invalid gig status transition")
)

// Service provides gig-related operations
type Service struct {
	pool *pgxpool.Pool
}

// NewService creates a new gig service
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// GetByID retrieves a gig by ID
func (s *Service) GetByID(ctx context.Context, gigID uuid.UUID) (*Gig, error) {
	var gig Gig

	err := s.pool.QueryRow(ctx, `
		SELECT id, contractor_id, title, status, starts_at, latitude, longitude, region_label, created_at, updated_at
		FROM gigs
		WHERE id = $1
	`, gigID).Scan(
		&gig.ID,
		&gig.ContractorID,
		&gig.Title,
		&gig.Status,
		&gig.StartsAt,
		&gig.Latitude,
		&gig.Longitude,
		&gig.RegionLabel,
		&gig.CreatedAt,
		&gig.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGigNotFound
		}
		return nil, fmt.Errorf("failed to load gig: %w", err)
	}

	return &gig, nil
}

// ListRoles returns all roles of a gig in creation order
func (s *Service) ListRoles(ctx context.Context, gigID uuid.UUID) ([]Role, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, gig_id, instrument, created_at
		FROM gig_roles
		WHERE gig_id = $1
		ORDER BY created_at, id
	`, gigID)
	if err != nil {
		return nil, fmt.Errorf("failed to list gig roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.GigID, &role.Instrument, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan gig role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gig roles: %w", err)
	}

	return roles, nil
}

// GetRole retrieves a role and verifies it belongs to the given gig
func (s *Service) GetRole(ctx context.Context, gigID, roleID uuid.UUID) (*Role, error) {
	var role Role

	err := s.pool.QueryRow(ctx, `
		SELECT id, gig_id, instrument, created_at
		FROM gig_roles
		WHERE id = $1 AND gig_id = $2
	`, roleID, gigID).Scan(&role.ID, &role.GigID, &role.Instrument, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to load gig role: %w", err)
	}

	return &role, nil
}

// CreateParams holds the fields for creating a draft gig.
type CreateParams struct {
	ContractorID uuid.UUID
	Title        string
	StartsAt     time.Time
	Latitude     *float64
	Longitude    *float64
	State        string
	City         string
}

// Create inserts a new draft gig. The region label is derived server-side
// from the administrative names and coordinates.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Gig, error) {
	var regionLabel *string
	if params.State != "" || params.City != "" || (params.Latitude != nil && params.Longitude != nil) {
		label := geo.ComputeRegionLabel(params.State, params.City, params.Latitude, params.Longitude)
		regionLabel = &label
	}

	var gig Gig
	err := s.pool.QueryRow(ctx, `
		INSERT INTO gigs (contractor_id, title, status, starts_at, latitude, longitude, region_label)
		VALUES ($1, $2, 'draft', $3, $4, $5, $6)
		RETURNING id, contractor_id, title, status, starts_at, latitude, longitude, region_label, created_at, updated_at
	`, params.ContractorID, params.Title, params.StartsAt, params.Latitude, params.Longitude, regionLabel).Scan(
		&gig.ID,
		&gig.ContractorID,
		&gig.Title,
		&gig.Status,
		&gig.StartsAt,
		&gig.Latitude,
		&gig.Longitude,
		&gig.RegionLabel,
		&gig.CreatedAt,
		&gig.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gig: %w", err)
	}

	return &gig, nil
}

// Publish transitions a draft gig to published. Only the owning contractor
// may publish, and only from draft.
func (s *Service) Publish(ctx context.Context, gigID, actorUserID uuid.UUID) (*Gig, error) {
	gig, err := s.GetByID(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.ContractorID != actorUserID {
		return nil, ErrNotGigOwner
	}
	if gig.Status != StatusDraft {
		return nil, ErrInvalidTransition
	}

	err = s.pool.QueryRow(ctx, `
		UPDATE gigs
		SET status = 'published', updated_at = NOW()
		WHERE id = $1 AND status = 'draft'
		RETURNING status, updated_at
	`, gigID).Scan(&gig.Status, &gig.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a race with a concurrent transition.
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to publish gig: %w", err)
	}

	return gig, nil
}

// AddRole appends an instrument slot to a gig owned by the caller.
func (s *Service) AddRole(ctx context.Context, gigID, actorUserID uuid.UUID, instrument *string) (*Role, error) {
	gig, err := s.GetByID(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.ContractorID != actorUserID {
		return nil, ErrNotGigOwner
	}

	var role Role
	err = s.pool.QueryRow(ctx, `
		INSERT INTO gig_roles (gig_id, instrument)
		VALUES ($1, $2)
		RETURNING id, gig_id, instrument, created_at
	`, gigID, instrument).Scan(&role.ID, &role.GigID, &role.Instrument, &role.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add gig role: %w", err)
	}

	return &role, nil
}
