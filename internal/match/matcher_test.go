package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chamaomusico/gigmatch/internal/gigs"
	"github.com/chamaomusico/gigmatch/internal/musicians"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeCandidateSource struct {
	candidates []musicians.Candidate
	err        error
}

func (f *fakeCandidateSource) FindByInstrument(_ context.Context, _ string, excludeUserID uuid.UUID) ([]musicians.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []musicians.Candidate
	for _, c := range f.candidates {
		if c.UserID != excludeUserID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeBlockSource struct {
	blocks []musicians.Block
	err    error
}

func (f *fakeBlockSource) ListBlocksContaining(_ context.Context, musicianIDs []uuid.UUID, at time.Time) ([]musicians.Block, error) {
	if f.err != nil {
		return nil, f.err
	}
	ids := make(map[uuid.UUID]bool, len(musicianIDs))
	for _, id := range musicianIDs {
		ids[id] = true
	}
	var out []musicians.Block
	for _, b := range f.blocks {
		if ids[b.MusicianID] && b.Contains(at) {
			out = append(out, b)
		}
	}
	return out, nil
}

func ptr(v float64) *float64 { return &v }
func strPtr(s string) *string { return &s }

func testGig(lat, lng *float64) *gigs.Gig {
	return &gigs.Gig{
		ID:           uuid.New(),
		ContractorID: uuid.New(),
		Status:       gigs.StatusPublished,
		StartsAt:     time.Date(2026, 10, 3, 21, 0, 0, 0, time.UTC),
		Latitude:     lat,
		Longitude:    lng,
	}
}

func testRole(gig *gigs.Gig, instrument string) *gigs.Role {
	role := &gigs.Role{ID: uuid.New(), GigID: gig.ID}
	if instrument != "" {
		role.Instrument = strPtr(instrument)
	}
	return role
}

func TestFindEligibleMusicians_RoleWithoutInstrumentIsSkipped(t *testing.T) {
	candidates := &fakeCandidateSource{err: errors.New("must not be called")}
	m := NewMatcher(candidates, &fakeBlockSource{})

	gig := testGig(ptr(-23.55), ptr(-46.63))
	ids, err := m.FindEligibleMusicians(context.Background(), gig, testRole(gig, ""))
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestFindEligibleMusicians_RadiusFilter(t *testing.T) {
	near := musicians.Candidate{UserID: uuid.New(), Latitude: ptr(-23.56), Longitude: ptr(-46.64)}
	far := musicians.Candidate{UserID: uuid.New(), Latitude: ptr(-22.90), Longitude: ptr(-43.17)} // ~360 km away
	farWideRadius := musicians.Candidate{UserID: uuid.New(), Latitude: ptr(-22.90), Longitude: ptr(-43.17), MaxRadiusKm: ptr(500.0)}

	m := NewMatcher(&fakeCandidateSource{candidates: []musicians.Candidate{near, far, farWideRadius}}, &fakeBlockSource{})

	gig := testGig(ptr(-23.55), ptr(-46.63))
	ids, err := m.FindEligibleMusicians(context.Background(), gig, testRole(gig, "guitarra"))
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{near.UserID, farWideRadius.UserID}, ids)
}

func TestFindEligibleMusicians_CandidateWithoutCoordinates(t *testing.T) {
	noCoords := musicians.Candidate{UserID: uuid.New()}
	m := NewMatcher(&fakeCandidateSource{candidates: []musicians.Candidate{noCoords}}, &fakeBlockSource{})

	// Gig with coordinates: candidate is excluded.
	gig := testGig(ptr(-23.55), ptr(-46.63))
	ids, err := m.FindEligibleMusicians(context.Background(), gig, testRole(gig, "baixo"))
	require.NoError(t, err)
	require.Empty(t, ids)

	// Gig without coordinates: the radius filter is skipped and the candidate passes.
	gig = testGig(nil, nil)
	ids, err = m.FindEligibleMusicians(context.Background(), gig, testRole(gig, "baixo"))
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{noCoords.UserID}, ids)
}

func TestFindEligibleMusicians_RadiusOverridePrecedence(t *testing.T) {
	// ~15 km from the gig; the declared radius would exclude, the override keeps.
	c := musicians.Candidate{
		UserID:           uuid.New(),
		Latitude:         ptr(-23.68),
		Longitude:        ptr(-46.63),
		MaxRadiusKm:      ptr(5.0),
		RadiusOverrideKm: ptr(100.0),
	}
	require.Equal(t, 100.0, EffectiveRadiusKm(c))

	m := NewMatcher(&fakeCandidateSource{candidates: []musicians.Candidate{c}}, &fakeBlockSource{})
	gig := testGig(ptr(-23.55), ptr(-46.63))
	ids, err := m.FindEligibleMusicians(context.Background(), gig, testRole(gig, "bateria"))
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{c.UserID}, ids)
}

func TestEffectiveRadiusKm_Default(t *testing.T) {
	require.Equal(t, DefaultRadiusKm, EffectiveRadiusKm(musicians.Candidate{}))
	require.Equal(t, DefaultRadiusKm, EffectiveRadiusKm(musicians.Candidate{MaxRadiusKm: ptr(-1.0)}))
	require.Equal(t, 30.0, EffectiveRadiusKm(musicians.Candidate{MaxRadiusKm: ptr(30.0)}))
}

func TestFindEligibleMusicians_ContractorExcluded(t *testing.T) {
	gig := testGig(nil, nil)
	self := musicians.Candidate{UserID: gig.ContractorID}
	other := musicians.Candidate{UserID: uuid.New()}

	m := NewMatcher(&fakeCandidateSource{candidates: []musicians.Candidate{self, other}}, &fakeBlockSource{})
	ids, err := m.FindEligibleMusicians(context.Background(), gig, testRole(gig, "voz"))
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{other.UserID}, ids)
}

func TestFindEligibleMusicians_Deduplicates(t *testing.T) {
	id := uuid.New()
	dup := musicians.Candidate{UserID: id}

	m := NewMatcher(&fakeCandidateSource{candidates: []musicians.Candidate{dup, dup, dup}}, &fakeBlockSource{})
	gig := testGig(nil, nil)
	ids, err := m.FindEligibleMusicians(context.Background(), gig, testRole(gig, "teclado"))
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{id}, ids)
}

func TestFindEligibleMusicians_BlockFilter(t *testing.T) {
	gig := testGig(nil, nil)
	blocked := musicians.Candidate{UserID: uuid.New()}
	free := musicians.Candidate{UserID: uuid.New()}

	blocks := &fakeBlockSource{blocks: []musicians.Block{
		{
			ID:         uuid.New(),
			MusicianID: blocked.UserID,
			StartsAt:   gig.StartsAt.Add(-time.Hour),
			EndsAt:     gig.StartsAt.Add(time.Hour),
		},
		{
			// Window not covering the gig start; must not exclude.
			ID:         uuid.New(),
			MusicianID: free.UserID,
			StartsAt:   gig.StartsAt.Add(2 * time.Hour),
			EndsAt:     gig.StartsAt.Add(3 * time.Hour),
		},
	}}

	m := NewMatcher(&fakeCandidateSource{candidates: []musicians.Candidate{blocked, free}}, blocks)
	ids, err := m.FindEligibleMusicians(context.Background(), gig, testRole(gig, "sax"))
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{free.UserID}, ids)
}

func TestFindEligibleMusicians_BlocksUnavailableTreatedAsNoBlocks(t *testing.T) {
	gig := testGig(nil, nil)
	c := musicians.Candidate{UserID: uuid.New()}

	m := NewMatcher(
		&fakeCandidateSource{candidates: []musicians.Candidate{c}},
		&fakeBlockSource{err: musicians.ErrBlocksUnavailable},
	)
	ids, err := m.FindEligibleMusicians(context.Background(), gig, testRole(gig, "violino"))
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{c.UserID}, ids)
}

func TestFindEligibleMusicians_BlockLookupFailureIsSoft(t *testing.T) {
	gig := testGig(nil, nil)
	c := musicians.Candidate{UserID: uuid.New()}

	m := NewMatcher(
		&fakeCandidateSource{candidates: []musicians.Candidate{c}},
		&fakeBlockSource{err: errors.New("connection reset")},
	)
	ids, err := m.FindEligibleMusicians(context.Background(), gig, testRole(gig, "violino"))
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{c.UserID}, ids)
}

func TestFindEligibleMusicians_CandidateFetchErrorPropagates(t *testing.T) {
	gig := testGig(nil, nil)
	m := NewMatcher(&fakeCandidateSource{err: errors.New("boom")}, &fakeBlockSource{})

	_, err := m.FindEligibleMusicians(context.Background(), gig, testRole(gig, "guitarra"))
	require.Error(t, err)
}
