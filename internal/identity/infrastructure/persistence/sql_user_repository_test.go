package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/quorum/internal/identity/domain"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/migrations"
)

func setupUserRepo(t *testing.T) *SQLUserRepository {
	t.Helper()
	ctx := context.Background()

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "users.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = migrations.NewRunner(conn, nil).Up(ctx)
	require.NoError(t, err)

	return NewSQLUserRepository(conn)
}

func TestSQLUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := setupUserRepo(t)

	email, err := domain.NewEmail("a@x.com")
	require.NoError(t, err)
	createdAt := time.Date(2030, 3, 4, 5, 6, 7, 0, time.UTC)
	user := domain.NewUser(email, "hash", createdAt)

	require.NoError(t, repo.Create(ctx, user))

	byID, err := repo.FindByID(ctx, user.ID())
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, user.ID(), byID.ID())
	assert.Equal(t, "a@x.com", byID.Email().String())
	assert.Equal(t, "hash", byID.PasswordHash())
	assert.True(t, createdAt.Equal(byID.CreatedAt()))

	byEmail, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID(), byEmail.ID())

	exists, err := repo.ExistsByEmail(ctx, email)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSQLUserRepository_MissingReturnsNil(t *testing.T) {
	ctx := context.Background()
	repo := setupUserRepo(t)

	byID, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, byID)

	email, _ := domain.NewEmail("nobody@x.com")
	byEmail, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Nil(t, byEmail)

	exists, err := repo.ExistsByEmail(ctx, email)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := setupUserRepo(t)
	email, _ := domain.NewEmail("a@x.com")

	require.NoError(t, repo.Create(ctx, domain.NewUser(email, "h1", time.Now())))

	err := repo.Create(ctx, domain.NewUser(email, "h2", time.Now()))
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrConstraintViolation)
	assert.True(t, database.IsUniqueViolation(err))
}
