package queries

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/felixgeelhaar/quorum/internal/meetings/domain"
)

type mockMeetingRepo struct {
	mock.Mock
	domain.MeetingRepository
}

func (m *mockMeetingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Meeting), args.Error(1)
}

func (m *mockMeetingRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Meeting, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]*domain.Meeting), args.Error(1)
}

func (m *mockMeetingRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Meeting, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*domain.Meeting), args.Error(1)
}

type mockTimeSlotRepo struct {
	mock.Mock
	domain.TimeSlotRepository
}

func (m *mockTimeSlotRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.TimeSlot, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*domain.TimeSlot), args.Error(1)
}

func (m *mockTimeSlotRepo) FindByMeetingIDs(ctx context.Context, meetingIDs []uuid.UUID) ([]*domain.TimeSlot, error) {
	args := m.Called(ctx, meetingIDs)
	return args.Get(0).([]*domain.TimeSlot), args.Error(1)
}

func (m *mockTimeSlotRepo) FindByProposer(ctx context.Context, proposerID uuid.UUID) ([]*domain.TimeSlot, error) {
	args := m.Called(ctx, proposerID)
	return args.Get(0).([]*domain.TimeSlot), args.Error(1)
}

type mockVoteRepo struct {
	mock.Mock
	domain.VoteRepository
}

func (m *mockVoteRepo) FindByTimeSlotIDs(ctx context.Context, timeSlotIDs []uuid.UUID) ([]*domain.Vote, error) {
	args := m.Called(ctx, timeSlotIDs)
	return args.Get(0).([]*domain.Vote), args.Error(1)
}

func (m *mockVoteRepo) FindByVoter(ctx context.Context, voterID uuid.UUID) ([]*domain.Vote, error) {
	args := m.Called(ctx, voterID)
	return args.Get(0).([]*domain.Vote), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, meetingID uuid.UUID) (*MeetingDTO, uint64, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*MeetingDTO), args.Get(1).(uint64), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, meeting *MeetingDTO, generation uint64) error {
	return m.Called(ctx, meeting, generation).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, meetingID uuid.UUID) error {
	return m.Called(ctx, meetingID).Error(0)
}
