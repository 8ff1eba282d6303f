package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	identityCommands "github.com/felixgeelhaar/quorum/internal/identity/application/commands"
	sharedApplication "github.com/felixgeelhaar/quorum/internal/shared/application"
)

var errResourceNotFound = errors.New("resource not found")

// statusFor maps a handler error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnauthenticated),
		errors.Is(err, identityCommands.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, sharedApplication.ErrValidation),
		errors.Is(err, sharedApplication.ErrInvalidRequest),
		errors.Is(err, sharedApplication.ErrCreation),
		errors.Is(err, sharedApplication.ErrUpdate):
		return http.StatusBadRequest
	case errors.Is(err, sharedApplication.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, sharedApplication.ErrNotFound),
		errors.Is(err, errResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, sharedApplication.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure renders err. Server errors are logged and never echoed.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

// pathID parses the {id} path segment. A malformed id names no resource.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, errResourceNotFound
	}
	return id, nil
}

func badRequest(err error) error {
	return sharedApplication.Fail(sharedApplication.ErrInvalidRequest, err)
}
