package domain

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooLong  = errors.New("password exceeds maximum length")
)

// MaxPasswordBytes is the longest password bcrypt accepts without truncation.
const MaxPasswordBytes = 72

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email represents a validated, lower-cased email address.
type Email struct {
	value string
}

// NewEmail creates a validated email address.
func NewEmail(value string) (Email, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" || !emailRegex.MatchString(value) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: value}, nil
}

// String returns the email string.
func (e Email) String() string {
	return e.value
}

// ValidatePassword checks a plaintext password before it is hashed.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
