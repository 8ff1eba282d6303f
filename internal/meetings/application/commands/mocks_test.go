package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/felixgeelhaar/quorum/internal/meetings/domain"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/outbox"
)

var now = time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

type txKey struct{}

type mockMeetingRepo struct {
	mock.Mock
}

func (m *mockMeetingRepo) Create(ctx context.Context, meeting *domain.Meeting) error {
	return m.Called(ctx, meeting).Error(0)
}

func (m *mockMeetingRepo) Update(ctx context.Context, meeting *domain.Meeting) error {
	return m.Called(ctx, meeting).Error(0)
}

func (m *mockMeetingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
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
}

func (m *mockTimeSlotRepo) Create(ctx context.Context, slot *domain.TimeSlot) error {
	return m.Called(ctx, slot).Error(0)
}

func (m *mockTimeSlotRepo) Update(ctx context.Context, slot *domain.TimeSlot) error {
	return m.Called(ctx, slot).Error(0)
}

func (m *mockTimeSlotRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTimeSlotRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.TimeSlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeSlot), args.Error(1)
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
}

func (m *mockVoteRepo) Create(ctx context.Context, vote *domain.Vote) error {
	return m.Called(ctx, vote).Error(0)
}

func (m *mockVoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockVoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Vote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vote), args.Error(1)
}

func (m *mockVoteRepo) FindByTimeSlotIDs(ctx context.Context, timeSlotIDs []uuid.UUID) ([]*domain.Vote, error) {
	args := m.Called(ctx, timeSlotIDs)
	return args.Get(0).([]*domain.Vote), args.Error(1)
}

func (m *mockVoteRepo) FindByVoter(ctx context.Context, voterID uuid.UUID) ([]*domain.Vote, error) {
	args := m.Called(ctx, voterID)
	return args.Get(0).([]*domain.Vote), args.Error(1)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Invalidate(ctx context.Context, meetingID uuid.UUID) error {
	return m.Called(ctx, meetingID).Error(0)
}

// beginTx expects a transaction on uow and returns the outer and transaction contexts.
func beginTx(uow *mockUnitOfWork) (context.Context, context.Context) {
	ctx := context.Background()
	txCtx := context.WithValue(ctx, txKey{}, "tx")
	uow.On("Begin", ctx).Return(txCtx, nil)
	return ctx, txCtx
}

func messagesWithKeys(keys ...string) interface{} {
	return mock.MatchedBy(func(msgs []*outbox.Message) bool {
		if len(msgs) != len(keys) {
			return false
		}
		for i, msg := range msgs {
			if msg.RoutingKey != keys[i] {
				return false
			}
		}
		return true
	})
}
