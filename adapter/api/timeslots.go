package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	meetingCommands "github.com/felixgeelhaar/quorum/internal/meetings/application/commands"
	meetingQueries "github.com/felixgeelhaar/quorum/internal/meetings/application/queries"
)

type createTimeSlotRequest struct {
	MeetingID uuid.UUID `json:"meeting_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type updateTimeSlotRequest struct {
	MeetingID *uuid.UUID `json:"meeting_id"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// createTimeSlot handles POST /api/timeslots.
func (s *Server) createTimeSlot(w http.ResponseWriter, r *http.Request, callerID uuid.UUID) {
	var req createTimeSlotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, badRequest(err))
		return
	}

	slot, err := s.handlers.CreateTimeSlot.Handle(r.Context(), meetingCommands.CreateTimeSlotCommand{
		ProposerID: callerID,
		MeetingID:  req.MeetingID,
		Start:      req.StartTime,
		End:        req.EndTime,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, meetingQueries.NewTimeSlotDTO(slot))
}

// updateTimeSlot handles PUT and PATCH /api/timeslots/{id}.
func (s *Server) updateTimeSlot(w http.ResponseWriter, r *http.Request, callerID uuid.UUID) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	var req updateTimeSlotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, badRequest(err))
		return
	}

	slot, err := s.handlers.UpdateTimeSlot.Handle(r.Context(), meetingCommands.UpdateTimeSlotCommand{
		CallerID:   callerID,
		TimeSlotID: id,
		MeetingID:  req.MeetingID,
		Start:      req.StartTime,
		End:        req.EndTime,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meetingQueries.NewTimeSlotDTO(slot))
}

// deleteTimeSlot handles DELETE /api/timeslots/{id}.
func (s *Server) deleteTimeSlot(w http.ResponseWriter, r *http.Request, callerID uuid.UUID) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	_, err = s.handlers.DeleteTimeSlot.Handle(r.Context(), meetingCommands.DeleteTimeSlotCommand{
		CallerID:   callerID,
		TimeSlotID: id,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeSuccess(w)
}
