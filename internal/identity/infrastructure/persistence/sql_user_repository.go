package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/quorum/internal/identity/domain"
	sharedDomain "github.com/felixgeelhaar/quorum/internal/shared/domain"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database"
)

const userColumns = `id, email, password_hash, created_at`

// SQLUserRepository persists users through the shared database abstraction.
type SQLUserRepository struct {
	conn database.Connection
}

// NewSQLUserRepository creates a new SQLUserRepository.
func NewSQLUserRepository(conn database.Connection) *SQLUserRepository {
	return &SQLUserRepository{conn: conn}
}

// Create inserts a new user.
func (r *SQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?)`,
		user.ID(),
		user.Email().String(),
		user.PasswordHash(),
		database.UTC(user.CreatedAt()),
	)
	return database.ClassifyWriteError(err)
}

// FindByID retrieves a user by id.
func (r *SQLUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// FindByEmail retrieves a user by email.
func (r *SQLUserRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email.String())
	return scanUser(row)
}

// ExistsByEmail checks if a user with the given email exists.
func (r *SQLUserRepository) ExistsByEmail(ctx context.Context, email domain.Email) (bool, error) {
	var count int
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, email.String(),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanUser(row database.Row) (*domain.User, error) {
	var (
		id           uuid.UUID
		rawEmail     string
		passwordHash string
		createdAt    database.Timestamp
	)
	if err := row.Scan(&id, &rawEmail, &passwordHash, &createdAt); err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	email, err := domain.NewEmail(rawEmail)
	if err != nil {
		return nil, fmt.Errorf("stored email for user %s: %w", id, err)
	}

	base := sharedDomain.RehydrateBaseAggregateRoot(sharedDomain.RehydrateBaseEntity(id, createdAt.Time))
	return domain.RehydrateUser(base, email, passwordHash), nil
}
