package invites

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chamaomusico/gigmatch/internal/gigs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeGigSource struct {
	gig   *gigs.Gig
	roles []gigs.Role
}

func (f *fakeGigSource) GetByID(_ context.Context, gigID uuid.UUID) (*gigs.Gig, error) {
	if f.gig == nil || f.gig.ID != gigID {
		return nil, gigs.ErrGigNotFound
	}
	return f.gig, nil
}

func (f *fakeGigSource) ListRoles(_ context.Context, gigID uuid.UUID) ([]gigs.Role, error) {
	var out []gigs.Role
	for _, role := range f.roles {
		if role.GigID == gigID {
			out = append(out, role)
		}
	}
	return out, nil
}

func (f *fakeGigSource) GetRole(_ context.Context, gigID, roleID uuid.UUID) (*gigs.Role, error) {
	for _, role := range f.roles {
		if role.GigID == gigID && role.ID == roleID {
			r := role
			return &r, nil
		}
	}
	return nil, gigs.ErrRoleNotFound
}

type fakeMatcher struct {
	eligible map[uuid.UUID][]uuid.UUID // role ID -> musician IDs
	failFor  map[uuid.UUID]bool
}

func (f *fakeMatcher) FindEligibleMusicians(_ context.Context, _ *gigs.Gig, role *gigs.Role) ([]uuid.UUID, error) {
	if f.failFor[role.ID] {
		return nil, errors.New("candidate fetch failed")
	}
	return f.eligible[role.ID], nil
}

type tuple struct {
	gigID      uuid.UUID
	roleID     uuid.UUID
	musicianID uuid.UUID
}

// memInviteStore is an in-memory InviteStore with the same tuple-uniqueness
// semantics as the Postgres unique index.
type memInviteStore struct {
	mu      sync.Mutex
	rows    map[tuple]*Invite
	listErr error
}

func newMemInviteStore() *memInviteStore {
	return &memInviteStore{rows: make(map[tuple]*Invite)}
}

func (s *memInviteStore) ListInvitedMusicianIDs(_ context.Context, gigID, gigRoleID uuid.UUID, musicianIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	invited := make(map[uuid.UUID]bool)
	for _, id := range musicianIDs {
		if _, ok := s.rows[tuple{gigID, gigRoleID, id}]; ok {
			invited[id] = true
		}
	}
	return invited, nil
}

func (s *memInviteStore) InsertPending(_ context.Context, gigID, gigRoleID, contractorID, musicianID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tuple{gigID, gigRoleID, musicianID}
	if _, ok := s.rows[key]; ok {
		return false, nil
	}
	s.rows[key] = &Invite{
		ID:           uuid.New(),
		GigID:        gigID,
		GigRoleID:    gigRoleID,
		ContractorID: contractorID,
		MusicianID:   musicianID,
		Status:       StatusPending,
		InvitedAt:    time.Now().UTC(),
	}
	return true, nil
}

func (s *memInviteStore) FindByTuple(_ context.Context, gigID, gigRoleID, musicianID uuid.UUID) (*Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv, ok := s.rows[tuple{gigID, gigRoleID, musicianID}]; ok {
		return inv, nil
	}
	return nil, ErrInviteNotFound
}

func (s *memInviteStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type recordingNotifier struct {
	mu       sync.Mutex
	enqueued []uuid.UUID
}

func (n *recordingNotifier) EnqueueProcessNotifications(gigID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enqueued = append(n.enqueued, gigID)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.enqueued)
}

func publishedGig() *gigs.Gig {
	return &gigs.Gig{
		ID:           uuid.New(),
		ContractorID: uuid.New(),
		Status:       gigs.StatusPublished,
		StartsAt:     time.Date(2026, 11, 20, 20, 0, 0, 0, time.UTC),
	}
}

func instrument(name string) *string { return &name }

func TestAutoCreateInvites_NonOwnerForbidden(t *testing.T) {
	gig := publishedGig()
	store := newMemInviteStore()
	issuer := NewIssuer(&fakeGigSource{gig: gig}, &fakeMatcher{}, store, &recordingNotifier{})

	_, err := issuer.AutoCreateInvites(context.Background(), gig.ID, uuid.New())
	require.ErrorIs(t, err, gigs.ErrNotGigOwner)
	require.Zero(t, store.count())
}

func TestAutoCreateInvites_GigNotFound(t *testing.T) {
	issuer := NewIssuer(&fakeGigSource{}, &fakeMatcher{}, newMemInviteStore(), &recordingNotifier{})

	_, err := issuer.AutoCreateInvites(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, gigs.ErrGigNotFound)
}

func TestAutoCreateInvites_DraftGigIsNoOp(t *testing.T) {
	gig := publishedGig()
	gig.Status = gigs.StatusDraft
	store := newMemInviteStore()
	notifier := &recordingNotifier{}
	issuer := NewIssuer(&fakeGigSource{gig: gig}, &fakeMatcher{}, store, notifier)

	created, err := issuer.AutoCreateInvites(context.Background(), gig.ID, gig.ContractorID)
	require.NoError(t, err)
	require.Zero(t, created)
	require.Zero(t, store.count())
	require.Zero(t, notifier.count())
}

func TestAutoCreateInvites_CreatesExactlyOnePerTuple(t *testing.T) {
	gig := publishedGig()
	role1 := gigs.Role{ID: uuid.New(), GigID: gig.ID, Instrument: instrument("guitarra")}
	role2 := gigs.Role{ID: uuid.New(), GigID: gig.ID, Instrument: instrument("bateria")}

	m1, m2, m3 := uuid.New(), uuid.New(), uuid.New()
	matcher := &fakeMatcher{eligible: map[uuid.UUID][]uuid.UUID{
		role1.ID: {m1, m2},
		role2.ID: {m2, m3},
	}}

	store := newMemInviteStore()
	// m1 was already invited for role1 before this run.
	_, err := store.InsertPending(context.Background(), gig.ID, role1.ID, gig.ContractorID, m1)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	issuer := NewIssuer(&fakeGigSource{gig: gig, roles: []gigs.Role{role1, role2}}, matcher, store, notifier)

	created, err := issuer.AutoCreateInvites(context.Background(), gig.ID, gig.ContractorID)
	require.NoError(t, err)
	require.Equal(t, 3, created) // role1: m2; role2: m2, m3
	require.Equal(t, 4, store.count())
	require.Equal(t, []uuid.UUID{gig.ID}, notifier.enqueued)

	// A second run finds every tuple already invited and creates nothing.
	created, err = issuer.AutoCreateInvites(context.Background(), gig.ID, gig.ContractorID)
	require.NoError(t, err)
	require.Zero(t, created)
	require.Equal(t, 4, store.count())
	require.Equal(t, 1, notifier.count())
}

func TestAutoCreateInvites_RoleFailureDoesNotAbortOtherRoles(t *testing.T) {
	gig := publishedGig()
	broken := gigs.Role{ID: uuid.New(), GigID: gig.ID, Instrument: instrument("guitarra")}
	healthy := gigs.Role{ID: uuid.New(), GigID: gig.ID, Instrument: instrument("voz")}

	m := uuid.New()
	matcher := &fakeMatcher{
		eligible: map[uuid.UUID][]uuid.UUID{healthy.ID: {m}},
		failFor:  map[uuid.UUID]bool{broken.ID: true},
	}

	store := newMemInviteStore()
	issuer := NewIssuer(&fakeGigSource{gig: gig, roles: []gigs.Role{broken, healthy}}, matcher, store, &recordingNotifier{})

	created, err := issuer.AutoCreateInvites(context.Background(), gig.ID, gig.ContractorID)
	require.NoError(t, err)
	require.Equal(t, 1, created)
	require.Equal(t, 1, store.count())
}

func TestAutoCreateInvites_NoNotificationWhenNothingCreated(t *testing.T) {
	gig := publishedGig()
	role := gigs.Role{ID: uuid.New(), GigID: gig.ID, Instrument: instrument("guitarra")}

	notifier := &recordingNotifier{}
	issuer := NewIssuer(&fakeGigSource{gig: gig, roles: []gigs.Role{role}}, &fakeMatcher{}, newMemInviteStore(), notifier)

	created, err := issuer.AutoCreateInvites(context.Background(), gig.ID, gig.ContractorID)
	require.NoError(t, err)
	require.Zero(t, created)
	require.Zero(t, notifier.count())
}

func TestCreateManualInvite_Idempotent(t *testing.T) {
	gig := publishedGig()
	role := gigs.Role{ID: uuid.New(), GigID: gig.ID, Instrument: instrument("guitarra")}
	musicianID := uuid.New()

	store := newMemInviteStore()
	notifier := &recordingNotifier{}
	issuer := NewIssuer(&fakeGigSource{gig: gig, roles: []gigs.Role{role}}, &fakeMatcher{}, store, notifier)

	first, created, err := issuer.CreateManualInvite(context.Background(), gig.ID, role.ID, musicianID, gig.ContractorID)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, StatusPending, first.Status)
	require.Equal(t, 1, store.count())

	second, created, err := issuer.CreateManualInvite(context.Background(), gig.ID, role.ID, musicianID, gig.ContractorID)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, store.count())
	require.Equal(t, 1, notifier.count())
}

func TestCreateManualInvite_RoleMustBelongToGig(t *testing.T) {
	gig := publishedGig()
	issuer := NewIssuer(&fakeGigSource{gig: gig}, &fakeMatcher{}, newMemInviteStore(), &recordingNotifier{})

	_, _, err := issuer.CreateManualInvite(context.Background(), gig.ID, uuid.New(), uuid.New(), gig.ContractorID)
	require.ErrorIs(t, err, gigs.ErrRoleNotFound)
}

func TestCreateManualInvite_NonOwnerForbidden(t *testing.T) {
	gig := publishedGig()
	role := gigs.Role{ID: uuid.New(), GigID: gig.ID, Instrument: instrument("guitarra")}
	issuer := NewIssuer(&fakeGigSource{gig: gig, roles: []gigs.Role{role}}, &fakeMatcher{}, newMemInviteStore(), &recordingNotifier{})

	_, _, err := issuer.CreateManualInvite(context.Background(), gig.ID, role.ID, uuid.New(), uuid.New())
	require.ErrorIs(t, err, gigs.ErrNotGigOwner)
}

func TestAutoCreateInvites_InviteLookupFailureIsSoftPerRole(t *testing.T) {
	gig := publishedGig()
	role := gigs.Role{ID: uuid.New(), GigID: gig.ID, Instrument: instrument("guitarra")}
	matcher := &fakeMatcher{eligible: map[uuid.UUID][]uuid.UUID{role.ID: {uuid.New()}}}

	store := newMemInviteStore()
	store.listErr = errors.New("connection reset")
	issuer := NewIssuer(&fakeGigSource{gig: gig, roles: []gigs.Role{role}}, matcher, store, &recordingNotifier{})

	created, err := issuer.AutoCreateInvites(context.Background(), gig.ID, gig.ContractorID)
	require.NoError(t, err)
	require.Zero(t, created)
	require.Zero(t, store.count())
}
