package api

import (
	"net/http"

	"github.com/google/uuid"

	meetingCommands "github.com/felixgeelhaar/quorum/internal/meetings/application/commands"
	meetingQueries "github.com/felixgeelhaar/quorum/internal/meetings/application/queries"
)

type createVoteRequest struct {
	TimeSlotID uuid.UUID `json:"timeslot_id"`
}

// createVote handles POST /api/votes.
func (s *Server) createVote(w http.ResponseWriter, r *http.Request, callerID uuid.UUID) {
	var req createVoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, badRequest(err))
		return
	}

	vote, err := s.handlers.CreateVote.Handle(r.Context(), meetingCommands.CreateVoteCommand{
		VoterID:    callerID,
		TimeSlotID: req.TimeSlotID,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, meetingQueries.NewVoteDTO(vote))
}

// deleteVote handles DELETE /api/votes/{id}.
func (s *Server) deleteVote(w http.ResponseWriter, r *http.Request, callerID uuid.UUID) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	err = s.handlers.DeleteVote.Handle(r.Context(), meetingCommands.DeleteVoteCommand{
		CallerID: callerID,
		VoteID:   id,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeSuccess(w)
}
