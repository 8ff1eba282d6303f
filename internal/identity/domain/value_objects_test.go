package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/quorum/internal/identity/domain"
)

func TestNewEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		want    string
	}{
		{"valid email", "a@x.com", nil, "a@x.com"},
		{"uppercase", "USER@EXAMPLE.COM", nil, "user@example.com"},
		{"with spaces", "  user@example.com  ", nil, "user@example.com"},
		{"with plus", "user+tag@example.com", nil, "user+tag@example.com"},
		{"subdomain", "user@sub.example.com", nil, "user@sub.example.com"},
		{"empty", "", domain.ErrInvalidEmail, ""},
		{"no @", "userexample.com", domain.ErrInvalidEmail, ""},
		{"no domain", "user@", domain.ErrInvalidEmail, ""},
		{"no local part", "@example.com", domain.ErrInvalidEmail, ""},
		{"multiple @", "user@@example.com", domain.ErrInvalidEmail, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, err := domain.NewEmail(tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, email.String())
		})
	}
}

func TestEmail_CaseInsensitive(t *testing.T) {
	lower, err := domain.NewEmail("user@example.com")
	require.NoError(t, err)
	upper, err := domain.NewEmail("USER@EXAMPLE.COM")
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, domain.ValidatePassword("pw1"))
	assert.NoError(t, domain.ValidatePassword(strings.Repeat("p", domain.MaxPasswordBytes)))
	assert.ErrorIs(t, domain.ValidatePassword(""), domain.ErrPasswordRequired)
	assert.ErrorIs(t, domain.ValidatePassword(strings.Repeat("p", domain.MaxPasswordBytes+1)), domain.ErrPasswordTooLong)
}
