package musicians

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chamaomusico/gigmatch/internal/geo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrBlocksUnavailable is returned when the musician_blocks table is not
// provisioned. Callers treat it as "no blocks", so deployments without the
// blocking feature keep working.
var ErrBlocksUnavailable = errors.New("musician blocks are not available")

// pgUndefinedTable is the Postgres error code for a missing relation.
const pgUndefinedTable = "42P01"

// Store provides musician candidate and block queries
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new musician store
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// FindByInstrument returns all musician candidates who list the given
// instrument, excluding the given user (the gig's contractor).
func (s *Store) FindByInstrument(ctx context.Context, instrument string, excludeUserID uuid.UUID) ([]Candidate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.user_id, p.latitude, p.longitude, p.max_radius_km, p.radius_override_km, p.instruments
		FROM musician_profiles p
		INNER JOIN users u ON u.id = p.user_id
		WHERE u.user_type = 'musician'
		  AND p.user_id <> $2
		  AND $1 = ANY(p.instruments)
	`, instrument, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.UserID, &c.Latitude, &c.Longitude, &c.MaxRadiusKm, &c.RadiusOverrideKm, &c.Instruments); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}

	return candidates, nil
}

// ListBlocksContaining returns all blocks of the given musicians whose window
// contains the given instant. A missing blocks table yields ErrBlocksUnavailable.
func (s *Store) ListBlocksContaining(ctx context.Context, musicianIDs []uuid.UUID, at time.Time) ([]Block, error) {
	if len(musicianIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, musician_id, starts_at, ends_at
		FROM musician_blocks
		WHERE musician_id = ANY($1)
		  AND starts_at <= $2
		  AND ends_at >= $2
	`, musicianIDs, at)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
			return nil, ErrBlocksUnavailable
		}
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	var blocks []Block
	for rows.Next() {
		var b Block
		if err := rows.Scan(&b.ID, &b.MusicianID, &b.StartsAt, &b.EndsAt); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blocks: %w", err)
	}

	return blocks, nil
}

// UpsertProfileParams holds the fields for creating or updating a profile.
type UpsertProfileParams struct {
	UserID           uuid.UUID
	Latitude         *float64
	Longitude        *float64
	MaxRadiusKm      *float64
	RadiusOverrideKm *float64
	Instruments      []string
	State            string
	City             string
}

// UpsertProfile creates or replaces a musician's profile. The region label is
// recomputed from the administrative names and coordinates on every write.
func (s *Store) UpsertProfile(ctx context.Context, params UpsertProfileParams) (*Profile, error) {
	var regionLabel *string
	if params.State != "" || params.City != "" || (params.Latitude != nil && params.Longitude != nil) {
		label := geo.ComputeRegionLabel(params.State, params.City, params.Latitude, params.Longitude)
		regionLabel = &label
	}

	if params.Instruments == nil {
		params.Instruments = []string{}
	}

	var profile Profile
	err := s.pool.QueryRow(ctx, `
		INSERT INTO musician_profiles (user_id, latitude, longitude, max_radius_km, radius_override_km, instruments, region_label, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			max_radius_km = EXCLUDED.max_radius_km,
			radius_override_km = EXCLUDED.radius_override_km,
			instruments = EXCLUDED.instruments,
			region_label = EXCLUDED.region_label,
			updated_at = NOW()
		RETURNING user_id, latitude, longitude, max_radius_km, radius_override_km, instruments, region_label, updated_at
	`, params.UserID, params.Latitude, params.Longitude, params.MaxRadiusKm, params.RadiusOverrideKm, params.Instruments, regionLabel).Scan(
		&profile.UserID,
		&profile.Latitude,
		&profile.Longitude,
		&profile.MaxRadiusKm,
		&profile.RadiusOverrideKm,
		&profile.Instruments,
		&profile.RegionLabel,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	return &profile, nil
}
