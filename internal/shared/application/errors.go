package application

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by command and query handlers. Handlers join a kind
// with the precise cause so callers can match either with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrCreation       = errors.New("creation failed")
	ErrUpdate         = errors.New("update failed")
	ErrDeletion       = errors.New("deletion failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnexpected     = errors.New("unexpected error")
)

var kinds = []error{
	ErrValidation,
	ErrCreation,
	ErrUpdate,
	ErrDeletion,
	ErrUnauthorized,
	ErrNotFound,
	ErrConflict,
	ErrInvalidRequest,
	ErrUnexpected,
}

// Fail tags cause with kind. A cause that already carries a kind is returned
// unchanged so the innermost classification wins.
func Fail(kind, cause error) error {
	if cause == nil {
		return kind
	}
	if HasKind(cause) {
		return cause
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

// Unexpected wraps cause as an unexpected failure of op.
func Unexpected(op string, cause error) error {
	if HasKind(cause) {
		return cause
	}
	return fmt.Errorf("%w in %s: %w", ErrUnexpected, op, cause)
}

// HasKind reports whether err already carries one of the error kinds.
func HasKind(err error) bool {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
