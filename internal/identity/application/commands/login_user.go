package commands

import (
	"context"

	"github.com/felixgeelhaar/quorum/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/quorum/internal/shared/application"
)

// LoginUserCommand contains credentials to verify.
type LoginUserCommand struct {
	Email    string
	Password string
}

// LoginUserHandler handles the LoginUserCommand.
type LoginUserHandler struct {
	userRepo domain.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
}

// NewLoginUserHandler creates a new LoginUserHandler.
func NewLoginUserHandler(userRepo domain.UserRepository, hasher PasswordHasher, tokens TokenIssuer) *LoginUserHandler {
	return &LoginUserHandler{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Handle verifies the credentials and issues a token. Unknown emails and
// wrong passwords fail identically.
func (h *LoginUserHandler) Handle(ctx context.Context, cmd LoginUserCommand) (*AuthResult, error) {
	invalid := sharedApplication.Fail(sharedApplication.ErrUnauthorized, ErrInvalidCredentials)

	email, err := domain.NewEmail(cmd.Email)
	if err != nil || cmd.Password == "" {
		return nil, invalid
	}

	user, err := h.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, sharedApplication.Unexpected("find user", err)
	}
	if user == nil {
		return nil, invalid
	}

	if err := h.hasher.Compare(user.PasswordHash(), cmd.Password); err != nil {
		return nil, invalid
	}

	token, err := h.tokens.Issue(user.ID())
	if err != nil {
		return nil, sharedApplication.Unexpected("issue token", err)
	}

	return &AuthResult{User: viewOf(user), Token: token}, nil
}
