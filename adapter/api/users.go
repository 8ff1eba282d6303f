package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	identityCommands "github.com/felixgeelhaar/quorum/internal/identity/application/commands"
	meetingQueries "github.com/felixgeelhaar/quorum/internal/meetings/application/queries"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse is the public form of an account with the meetings it owns.
type userResponse struct {
	ID        uuid.UUID                   `json:"id"`
	Email     string                      `json:"email"`
	CreatedAt time.Time                   `json:"created_at"`
	Meetings  []meetingQueries.MeetingDTO `json:"meetings"`
}

type authResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func newAuthResponse(result *identityCommands.AuthResult, meetings []meetingQueries.MeetingDTO) authResponse {
	if meetings == nil {
		meetings = []meetingQueries.MeetingDTO{}
	}
	return authResponse{
		User: userResponse{
			ID:        result.User.ID,
			Email:     result.User.Email,
			CreatedAt: result.User.CreatedAt,
			Meetings:  meetings,
		},
		Token:     result.Token.Value,
		ExpiresAt: result.Token.ExpiresAt,
	}
}

// registerUser handles POST /api/users.
func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, badRequest(err))
		return
	}

	result, err := s.handlers.RegisterUser.Handle(r.Context(), identityCommands.RegisterUserCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	// a new account owns nothing yet
	writeJSON(w, http.StatusCreated, newAuthResponse(result, nil))
}

// loginUser handles POST /api/users/login.
func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, badRequest(err))
		return
	}

	result, err := s.handlers.LoginUser.Handle(r.Context(), identityCommands.LoginUserCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	owned, err := s.handlers.ListOwnedMeetings.Handle(r.Context(), meetingQueries.ListOwnedMeetingsQuery{
		OwnerID: result.User.ID,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAuthResponse(result, owned))
}
