package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/quorum/internal/meetings/domain"
)

var now = time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

// memoryStore implements the three repositories over maps.
type memoryStore struct {
	meetings map[uuid.UUID]*domain.Meeting
	slots    map[uuid.UUID]*domain.TimeSlot
	votes    map[uuid.UUID]*domain.Vote
	queries  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		meetings: map[uuid.UUID]*domain.Meeting{},
		slots:    map[uuid.UUID]*domain.TimeSlot{},
		votes:    map[uuid.UUID]*domain.Vote{},
	}
}

type meetingRepo struct{ *memoryStore }
type slotRepo struct{ *memoryStore }
type voteRepo struct{ *memoryStore }

func (r meetingRepo) Create(_ context.Context, m *domain.Meeting) error {
	r.meetings[m.ID()] = m
	return nil
}
func (r meetingRepo) Update(context.Context, *domain.Meeting) error { return nil }
func (r meetingRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.meetings, id)
	return nil
}
func (r meetingRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Meeting, error) {
	return r.meetings[id], nil
}
func (r meetingRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Meeting, error) {
	r.queries++
	var out []*domain.Meeting
	for _, m := range r.meetings {
		if m.OwnerID() == ownerID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, nil
}
func (r meetingRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.Meeting, error) {
	r.queries++
	var out []*domain.Meeting
	for _, id := range ids {
		if m, ok := r.meetings[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r slotRepo) Create(_ context.Context, s *domain.TimeSlot) error {
	r.slots[s.ID()] = s
	return nil
}
func (r slotRepo) Update(context.Context, *domain.TimeSlot) error { return nil }
func (r slotRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.slots, id)
	return nil
}
func (r slotRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.TimeSlot, error) {
	return r.slots[id], nil
}
func (r slotRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.TimeSlot, error) {
	r.queries++
	var out []*domain.TimeSlot
	for _, id := range ids {
		if s, ok := r.slots[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}
func (r slotRepo) FindByMeetingIDs(_ context.Context, ids []uuid.UUID) ([]*domain.TimeSlot, error) {
	r.queries++
	wanted := map[uuid.UUID]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var out []*domain.TimeSlot
	for _, s := range r.slots {
		if wanted[s.MeetingID()] {
			out = append(out, s)
		}
	}
	return out, nil
}
func (r slotRepo) FindByProposer(_ context.Context, proposerID uuid.UUID) ([]*domain.TimeSlot, error) {
	r.queries++
	var out []*domain.TimeSlot
	for _, s := range r.slots {
		if s.ProposerID() == proposerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r voteRepo) Create(_ context.Context, v *domain.Vote) error {
	r.votes[v.ID()] = v
	return nil
}
func (r voteRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.votes, id)
	return nil
}
func (r voteRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Vote, error) {
	return r.votes[id], nil
}
func (r voteRepo) FindByTimeSlotIDs(_ context.Context, ids []uuid.UUID) ([]*domain.Vote, error) {
	r.queries++
	wanted := map[uuid.UUID]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var out []*domain.Vote
	for _, v := range r.votes {
		if wanted[v.TimeSlotID()] {
			out = append(out, v)
		}
	}
	return out, nil
}
func (r voteRepo) FindByVoter(_ context.Context, voterID uuid.UUID) ([]*domain.Vote, error) {
	r.queries++
	var out []*domain.Vote
	for _, v := range r.votes {
		if v.VoterID() == voterID {
			out = append(out, v)
		}
	}
	return out, nil
}

type fixture struct {
	store      *memoryStore
	aggregator *Aggregator
}

func newFixture() *fixture {
	store := newMemoryStore()
	return &fixture{
		store:      store,
		aggregator: NewAggregator(meetingRepo{store}, slotRepo{store}, voteRepo{store}),
	}
}

func (f *fixture) meeting(owner uuid.UUID, title string, age time.Duration) *domain.Meeting {
	m := domain.RehydrateMeeting(uuid.New(), owner, title, nil, now.Add(-age))
	f.store.meetings[m.ID()] = m
	return m
}

func (f *fixture) slot(proposer uuid.UUID, m *domain.Meeting) *domain.TimeSlot {
	s := domain.RehydrateTimeSlot(uuid.New(), proposer, m.ID(), now.Add(time.Hour), now.Add(2*time.Hour), now)
	f.store.slots[s.ID()] = s
	return s
}

func (f *fixture) vote(voter uuid.UUID, s *domain.TimeSlot) *domain.Vote {
	v := domain.RehydrateVote(uuid.New(), voter, s.ID(), now)
	f.store.votes[v.ID()] = v
	return v
}

func ids(meetings []*domain.Meeting) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, m.ID())
	}
	return out
}

func TestAggregator_MeetingsForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("union of owned, proposed and voted without duplicates", func(t *testing.T) {
		f := newFixture()
		user := uuid.New()
		other := uuid.New()

		ownedOld := f.meeting(user, "owned old", 2*time.Hour)
		ownedNew := f.meeting(user, "owned new", time.Hour)
		proposedIn := f.meeting(other, "proposed", time.Hour)
		votedIn := f.meeting(other, "voted", time.Hour)
		everything := f.meeting(other, "proposed and voted", time.Hour)
		unrelated := f.meeting(other, "unrelated", time.Hour)

		f.slot(user, proposedIn)
		f.vote(user, f.slot(other, votedIn))
		mine := f.slot(user, everything)
		f.vote(user, mine)
		f.vote(user, mine)
		f.vote(user, f.slot(other, ownedOld))
		f.slot(other, unrelated)

		meetings, err := f.aggregator.MeetingsForUser(ctx, user)

		require.NoError(t, err)
		got := ids(meetings)
		assert.ElementsMatch(t, []uuid.UUID{ownedOld.ID(), ownedNew.ID(), proposedIn.ID(), votedIn.ID(), everything.ID()}, got)
		assert.Equal(t, []uuid.UUID{ownedNew.ID(), ownedOld.ID()}, got[:2])
	})

	t.Run("voter who neither owns nor proposed sees the meeting", func(t *testing.T) {
		f := newFixture()
		alice := uuid.New()
		bob := uuid.New()
		standup := f.meeting(alice, "Standup", time.Hour)
		f.vote(bob, f.slot(alice, standup))

		meetings, err := f.aggregator.MeetingsForUser(ctx, bob)

		require.NoError(t, err)
		require.Len(t, meetings, 1)
		assert.Equal(t, "Standup", meetings[0].Title())
	})

	t.Run("empty result is an empty list", func(t *testing.T) {
		f := newFixture()
		f.meeting(uuid.New(), "someone else's", time.Hour)

		meetings, err := f.aggregator.MeetingsForUser(ctx, uuid.New())

		require.NoError(t, err)
		assert.NotNil(t, meetings)
		assert.Empty(t, meetings)
	})

	t.Run("loads slots and votes", func(t *testing.T) {
		f := newFixture()
		user := uuid.New()
		m := f.meeting(user, "Standup", time.Hour)
		s := f.slot(user, m)
		v1 := f.vote(uuid.New(), s)
		v2 := f.vote(user, s)

		meetings, err := f.aggregator.MeetingsForUser(ctx, user)

		require.NoError(t, err)
		require.Len(t, meetings, 1)
		require.Len(t, meetings[0].TimeSlots(), 1)
		assert.ElementsMatch(t, []*domain.Vote{v1, v2}, meetings[0].TimeSlots()[0].Votes())
	})
}

func TestAggregator_OwnedMeetings(t *testing.T) {
	f := newFixture()
	user := uuid.New()
	owned := f.meeting(user, "mine", time.Hour)
	f.slot(user, f.meeting(uuid.New(), "proposed only", time.Hour))

	meetings, err := f.aggregator.OwnedMeetings(context.Background(), user)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{owned.ID()}, ids(meetings))
}

func TestAggregator_LoadSchedules_QueryCountIndependentOfSize(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	var meetings []*domain.Meeting
	for i := 0; i < 5; i++ {
		m := f.meeting(owner, "m", time.Duration(i)*time.Minute)
		f.vote(owner, f.slot(owner, m))
		meetings = append(meetings, m)
	}

	require.NoError(t, f.aggregator.LoadSchedules(context.Background(), meetings))

	assert.Equal(t, 2, f.store.queries)
	for _, m := range meetings {
		require.Len(t, m.TimeSlots(), 1)
		assert.Len(t, m.TimeSlots()[0].Votes(), 1)
	}
}
