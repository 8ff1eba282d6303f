package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	meetingCommands "github.com/felixgeelhaar/quorum/internal/meetings/application/commands"
	meetingQueries "github.com/felixgeelhaar/quorum/internal/meetings/application/queries"
)

// slotWindowRequest is a slot nested in a create-meeting body. Its keys are
// camelCase like the parent's timeSlots, unlike /api/timeslots.
type slotWindowRequest struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type createMeetingRequest struct {
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	TimeSlots   []slotWindowRequest `json:"timeSlots"`
}

// updateMeetingRequest leaves absent fields unchanged.
type updateMeetingRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// listMeetings handles GET /api/meetings. An empty result is still 200.
func (s *Server) listMeetings(w http.ResponseWriter, r *http.Request, callerID uuid.UUID) {
	meetings, err := s.handlers.ListMeetings.Handle(r.Context(), meetingQueries.ListMeetingsQuery{UserID: callerID})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meetings)
}

// createMeeting handles POST /api/meetings.
func (s *Server) createMeeting(w http.ResponseWriter, r *http.Request, callerID uuid.UUID) {
	var req createMeetingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, badRequest(err))
		return
	}

	windows := make([]meetingCommands.SlotWindow, 0, len(req.TimeSlots))
	for _, slot := range req.TimeSlots {
		windows = append(windows, meetingCommands.SlotWindow{Start: slot.StartTime, End: slot.EndTime})
	}

	meeting, err := s.handlers.CreateMeeting.Handle(r.Context(), meetingCommands.CreateMeetingCommand{
		OwnerID:     callerID,
		Title:       req.Title,
		Description: req.Description,
		TimeSlots:   windows,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, meetingQueries.NewMeetingDTO(meeting))
}

// getMeeting handles GET /api/meetings/{id}.
func (s *Server) getMeeting(w http.ResponseWriter, r *http.Request, _ uuid.UUID) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	meeting, err := s.handlers.GetMeeting.Handle(r.Context(), meetingQueries.GetMeetingQuery{MeetingID: id})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

// updateMeeting handles PUT and PATCH /api/meetings/{id}.
func (s *Server) updateMeeting(w http.ResponseWriter, r *http.Request, callerID uuid.UUID) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	var req updateMeetingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, badRequest(err))
		return
	}

	_, err = s.handlers.UpdateMeeting.Handle(r.Context(), meetingCommands.UpdateMeetingCommand{
		CallerID:    callerID,
		MeetingID:   id,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	// re-read so the response carries the current slots and votes
	meeting, err := s.handlers.GetMeeting.Handle(r.Context(), meetingQueries.GetMeetingQuery{MeetingID: id})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

// deleteMeeting handles DELETE /api/meetings/{id}.
func (s *Server) deleteMeeting(w http.ResponseWriter, r *http.Request, callerID uuid.UUID) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	err = s.handlers.DeleteMeeting.Handle(r.Context(), meetingCommands.DeleteMeetingCommand{
		CallerID:  callerID,
		MeetingID: id,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeSuccess(w)
}
