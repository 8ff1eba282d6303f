package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/quorum/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/quorum/internal/shared/application"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/quorum/pkg/clock"
)

// RegisterUserCommand contains the data needed to create an account.
type RegisterUserCommand struct {
	Email    string
	Password string
}

// RegisterUserHandler handles the RegisterUserCommand.
type RegisterUserHandler struct {
	userRepo   domain.UserRepository
	outboxRepo outbox.Writer
	uow        sharedApplication.UnitOfWork
	hasher     PasswordHasher
	tokens     TokenIssuer
	clock      clock.Clock
	logger     *slog.Logger
}

// NewRegisterUserHandler creates a new RegisterUserHandler.
func NewRegisterUserHandler(
	userRepo domain.UserRepository,
	outboxRepo outbox.Writer,
	uow sharedApplication.UnitOfWork,
	hasher PasswordHasher,
	tokens TokenIssuer,
	clk clock.Clock,
	logger *slog.Logger,
) *RegisterUserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegisterUserHandler{
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		hasher:     hasher,
		tokens:     tokens,
		clock:      clk,
		logger:     logger,
	}
}

// Handle creates the account and issues a token for it.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*AuthResult, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, sharedApplication.Fail(sharedApplication.ErrValidation, err)
	}
	if err := domain.ValidatePassword(cmd.Password); err != nil {
		return nil, sharedApplication.Fail(sharedApplication.ErrValidation, err)
	}

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, sharedApplication.Unexpected("hash password", err)
	}

	var user *domain.User
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		exists, err := h.userRepo.ExistsByEmail(txCtx, email)
		if err != nil {
			return sharedApplication.Unexpected("check email", err)
		}
		if exists {
			return sharedApplication.Fail(sharedApplication.ErrConflict, ErrEmailTaken)
		}

		user = domain.NewUser(email, hash, h.clock.Now())
		if err := h.userRepo.Create(txCtx, user); err != nil {
			// lost a race with a concurrent registration
			if database.IsUniqueViolation(err) {
				return sharedApplication.Fail(sharedApplication.ErrConflict, ErrEmailTaken)
			}
			h.logger.ErrorContext(ctx, "failed to create user", "error", err)
			return sharedApplication.Fail(sharedApplication.ErrCreation, err)
		}

		events := user.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, user.ID()))
		msgs, err := outbox.NewMessages(events)
		if err != nil {
			return sharedApplication.Unexpected("encode events", err)
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return nil, sharedApplication.Unexpected("register user", err)
	}
	user.ClearDomainEvents()

	token, err := h.tokens.Issue(user.ID())
	if err != nil {
		return nil, sharedApplication.Unexpected("issue token", err)
	}

	return &AuthResult{User: viewOf(user), Token: token}, nil
}
