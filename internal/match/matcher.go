// Package match implements candidate eligibility matching for gig roles.
package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chamaomusico/gigmatch/internal/geo"
	"github.com/chamaomusico/gigmatch/internal/gigs"
	"github.com/chamaomusico/gigmatch/internal/musicians"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultRadiusKm is the search radius applied to candidates who declared none.
const DefaultRadiusKm = 50.0

// CandidateSource yields musician candidates for an instrument.
type CandidateSource interface {
	FindByInstrument(ctx context.Context, instrument string, excludeUserID uuid.UUID) ([]musicians.Candidate, error)
}

// BlockSource yields unavailability blocks covering a given instant.
type BlockSource interface {
	ListBlocksContaining(ctx context.Context, musicianIDs []uuid.UUID, at time.Time) ([]musicians.Block, error)
}

// Matcher computes the eligible musician set for a gig role.
type Matcher struct {
	candidates CandidateSource
	blocks     BlockSource
}

// NewMatcher creates a new matcher over the given sources.
func NewMatcher(candidates CandidateSource, blocks BlockSource) *Matcher {
	return &Matcher{candidates: candidates, blocks: blocks}
}

// FindEligibleMusicians returns the deduplicated, ordered list of musician IDs
// eligible for the given role of the given gig. Roles without an instrument
// yield an empty list. The returned error covers candidate-fetch failures
// only; block-lookup failures degrade to skipping the block filter.
func (m *Matcher) FindEligibleMusicians(ctx context.Context, gig *gigs.Gig, role *gigs.Role) ([]uuid.UUID, error) {
	if role.Instrument == nil || *role.Instrument == "" {
		log.Debug().
			Str("gig_id", gig.ID.String()).
			Str("role_id", role.ID.String()).
			Msg("Role has no instrument, skipping matching")
		return nil, nil
	}

	candidates, err := m.candidates.FindByInstrument(ctx, *role.Instrument, gig.ContractorID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates for instrument %q: %w", *role.Instrument, err)
	}

	candidates = m.filterByRadius(gig, role, candidates)

	ids := make([]uuid.UUID, 0, len(candidates))
	seen := make(map[uuid.UUID]bool, len(candidates))
	for _, c := range candidates {
		if c.UserID == gig.ContractorID || seen[c.UserID] {
			continue
		}
		seen[c.UserID] = true
		ids = append(ids, c.UserID)
	}

	ids = m.filterByBlocks(ctx, gig, role, ids)

	return ids, nil
}

// filterByRadius drops candidates outside their effective search radius.
// A gig without coordinates matches every candidate regardless of distance;
// a candidate without coordinates can only match such a gig.
func (m *Matcher) filterByRadius(gig *gigs.Gig, role *gigs.Role, candidates []musicians.Candidate) []musicians.Candidate {
	if !gig.HasCoordinates() {
		log.Warn().
			Str("gig_id", gig.ID.String()).
			Str("role_id", role.ID.String()).
			Msg("Gig has no coordinates, skipping radius filter")
		return candidates
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if !c.HasCoordinates() {
			continue
		}
		distance := geo.HaversineKm(*gig.Latitude, *gig.Longitude, *c.Latitude, *c.Longitude)
		if distance <= EffectiveRadiusKm(c) {
			log.Debug().
				Str("musician_id", c.UserID.String()).
				Float64("distance_km", distance).
				Int("travel_estimate_min", geo.EstimateTravelMin(distance)).
				Msg("Candidate within radius")
			kept = append(kept, c)
		}
	}
	return kept
}

// filterByBlocks drops musicians with an unavailability block covering the
// gig's start time. Block-store failures are soft: the filter is skipped and
// the unfiltered set returned.
func (m *Matcher) filterByBlocks(ctx context.Context, gig *gigs.Gig, role *gigs.Role, ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return ids
	}

	blocks, err := m.blocks.ListBlocksContaining(ctx, ids, gig.StartsAt)
	if err != nil {
		if errors.Is(err, musicians.ErrBlocksUnavailable) {
			log.Debug().
				Str("gig_id", gig.ID.String()).
				Msg("Blocks table not provisioned, treating as no blocks")
			return ids
		}
		log.Warn().
			Err(err).
			Str("gig_id", gig.ID.String()).
			Str("role_id", role.ID.String()).
			Msg("Block lookup failed, skipping block filter for this role")
		return ids
	}

	if len(blocks) == 0 {
		return ids
	}

	blocked := make(map[uuid.UUID]bool, len(blocks))
	for _, b := range blocks {
		if b.Contains(gig.StartsAt) {
			blocked[b.MusicianID] = true
		}
	}

	kept := ids[:0]
	for _, id := range ids {
		if !blocked[id] {
			kept = append(kept, id)
		}
	}
	return kept
}

// EffectiveRadiusKm resolves a candidate's search radius: the explicit
// override wins, then the declared maximum, then DefaultRadiusKm.
func EffectiveRadiusKm(c musicians.Candidate) float64 {
	if c.RadiusOverrideKm != nil && *c.RadiusOverrideKm > 0 {
		return *c.RadiusOverrideKm
	}
	if c.MaxRadiusKm != nil && *c.MaxRadiusKm > 0 {
		return *c.MaxRadiusKm
	}
	return DefaultRadiusKm
}
