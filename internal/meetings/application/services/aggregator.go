package services

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/quorum/internal/meetings/domain"
	"github.com/google/uuid"
)

// Aggregator computes the meetings relevant to a user and loads their
// slots and votes.
type Aggregator struct {
	meetings domain.MeetingRepository
	slots    domain.TimeSlotRepository
	votes    domain.VoteRepository
}

// NewAggregator creates a new Aggregator.
func NewAggregator(meetings domain.MeetingRepository, slots domain.TimeSlotRepository, votes domain.VoteRepository) *Aggregator {
	return &Aggregator{
		meetings: meetings,
		slots:    slots,
		votes:    votes,
	}
}

// MeetingsForUser returns, without duplicates, the meetings userID owns,
// proposed a slot for, or voted in. Owned meetings come first, newest
// first; the order of the rest is unspecified. The result is empty, not
// nil, when nothing matches.
func (a *Aggregator) MeetingsForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Meeting, error) {
	owned, err := a.meetings.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find owned meetings: %w", err)
	}

	proposed, err := a.proposedMeetingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	voted, err := a.votedMeetingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Meeting, 0, len(owned))
	seen := make(map[uuid.UUID]struct{}, len(owned))
	for _, meeting := range owned {
		seen[meeting.ID()] = struct{}{}
		result = append(result, meeting)
	}

	var missing []uuid.UUID
	for _, id := range append(proposed, voted...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	if len(missing) > 0 {
		others, err := a.meetings.FindByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("find participated meetings: %w", err)
		}
		result = append(result, others...)
	}

	if err := a.LoadSchedules(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// OwnedMeetings returns the meetings owned by userID with their schedules loaded.
func (a *Aggregator) OwnedMeetings(ctx context.Context, userID uuid.UUID) ([]*domain.Meeting, error) {
	owned, err := a.meetings.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find owned meetings: %w", err)
	}
	if err := a.LoadSchedules(ctx, owned); err != nil {
		return nil, err
	}
	return owned, nil
}

// LoadSchedules attaches every slot, and every slot's votes, to meetings
// with two queries regardless of the number of meetings.
func (a *Aggregator) LoadSchedules(ctx context.Context, meetings []*domain.Meeting) error {
	if len(meetings) == 0 {
		return nil
	}

	meetingIDs := make([]uuid.UUID, 0, len(meetings))
	for _, meeting := range meetings {
		meetingIDs = append(meetingIDs, meeting.ID())
	}
	slots, err := a.slots.FindByMeetingIDs(ctx, meetingIDs)
	if err != nil {
		return fmt.Errorf("find time slots: %w", err)
	}

	slotIDs := make([]uuid.UUID, 0, len(slots))
	for _, slot := range slots {
		slotIDs = append(slotIDs, slot.ID())
	}
	var votes []*domain.Vote
	if len(slotIDs) > 0 {
		votes, err = a.votes.FindByTimeSlotIDs(ctx, slotIDs)
		if err != nil {
			return fmt.Errorf("find votes: %w", err)
		}
	}

	votesBySlot := make(map[uuid.UUID][]*domain.Vote, len(slots))
	for _, vote := range votes {
		votesBySlot[vote.TimeSlotID()] = append(votesBySlot[vote.TimeSlotID()], vote)
	}
	slotsByMeeting := make(map[uuid.UUID][]*domain.TimeSlot, len(meetings))
	for _, slot := range slots {
		if err := slot.AttachVotes(votesBySlot[slot.ID()]); err != nil {
			return err
		}
		slotsByMeeting[slot.MeetingID()] = append(slotsByMeeting[slot.MeetingID()], slot)
	}
	for _, meeting := range meetings {
		if err := meeting.AttachTimeSlots(slotsByMeeting[meeting.ID()]); err != nil {
			return err
		}
	}
	return nil
}

func (a *Aggregator) proposedMeetingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	slots, err := a.slots.FindByProposer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find proposed time slots: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.MeetingID())
	}
	return ids, nil
}

// votedMeetingIDs resolves the user's votes to their slots and the slots to
// their meetings.
func (a *Aggregator) votedMeetingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	votes, err := a.votes.FindByVoter(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find votes: %w", err)
	}
	if len(votes) == 0 {
		return nil, nil
	}

	slotIDs := make([]uuid.UUID, 0, len(votes))
	for _, vote := range votes {
		slotIDs = append(slotIDs, vote.TimeSlotID())
	}
	slots, err := a.slots.FindByIDs(ctx, slotIDs)
	if err != nil {
		return nil, fmt.Errorf("find voted time slots: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.MeetingID())
	}
	return ids, nil
}
