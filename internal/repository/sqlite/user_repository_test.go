package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"minitweet/internal/domain"
	"minitweet/internal/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestUser(id, email string) *domain.User {
	return &domain.User{
		UserID:       uuid.MustParse(id),
		Email:        email,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "$2a$10$hash",
	}
}

func TestSQLiteUserRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	require.NoError(t, repo.Init(ctx))

	birthday, err := domain.ParseDate("1990-06-15")
	require.NoError(t, err)
	user := newTestUser("7c9e6679-7425-40de-944b-e07fc1f90ae7", "ada@x.com")
	user.Birthday = &birthday
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByID(ctx, user.UserID)
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)
	require.NotNil(t, got.Birthday)
	require.Equal(t, "1990-06-15", got.Birthday.String())

	byEmail, err := repo.GetByEmail(ctx, "ADA@X.COM")
	require.NoError(t, err)
	require.Equal(t, user.UserID, byEmail.UserID)

	require.NoError(t, repo.Delete(ctx, user.UserID))
	_, err = repo.GetByID(ctx, user.UserID)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, user.UserID), repository.ErrNotFound)
}

func TestSQLiteUserRepositoryCreateConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	require.NoError(t, repo.Init(ctx))

	user := newTestUser("7c9e6679-7425-40de-944b-e07fc1f90ae7", "ada@x.com")
	require.NoError(t, repo.Create(ctx, user))
	require.ErrorIs(t, repo.Create(ctx, user), repository.ErrConflict)
}

func TestSQLiteUserRepositoryUpdateMovesToEnd(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	require.NoError(t, repo.Init(ctx))

	first := newTestUser("7c9e6679-7425-40de-944b-e07fc1f90ae7", "first@x.com")
	second := newTestUser("9b2b94f2-5ad2-47a1-83a4-3d041e6e1a53", "second@x.com")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	first.FirstName = "Augusta"
	require.NoError(t, repo.Update(ctx, first.UserID, first))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, second.UserID, users[0].UserID)
	require.Equal(t, first.UserID, users[1].UserID)
	require.Equal(t, "Augusta", users[1].FirstName)

	require.ErrorIs(t,
		repo.Update(ctx, uuid.MustParse("11111111-1111-1111-1111-111111111111"), first),
		repository.ErrNotFound)
}
