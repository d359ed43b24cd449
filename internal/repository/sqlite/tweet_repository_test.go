package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"minitweet/internal/domain"
	"minitweet/internal/repository"
)

func TestSQLiteTweetRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewTweetRepository(newTestDB(t))
	require.NoError(t, repo.Init(ctx))

	author := newTestUser("7c9e6679-7425-40de-944b-e07fc1f90ae7", "ada@x.com").Sanitized()
	tweet := &domain.Tweet{
		TweetID:   uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e"),
		Content:   "hello world",
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		By:        author,
	}
	require.NoError(t, repo.Create(ctx, tweet))
	require.ErrorIs(t, repo.Create(ctx, tweet), repository.ErrConflict)

	got, err := repo.GetByID(ctx, tweet.TweetID)
	require.NoError(t, err)
	require.Equal(t, "hello world", got.Content)
	require.True(t, got.CreatedAt.Equal(tweet.CreatedAt))
	require.Equal(t, author.UserID, got.By.UserID)
	require.Empty(t, got.By.PasswordHash)
	require.Nil(t, got.UpdatedAt)

	updated := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	got.Content = "edited"
	got.UpdatedAt = &updated
	require.NoError(t, repo.Update(ctx, tweet.TweetID, got))

	reread, err := repo.GetByID(ctx, tweet.TweetID)
	require.NoError(t, err)
	require.Equal(t, "edited", reread.Content)
	require.NotNil(t, reread.UpdatedAt)
	require.True(t, reread.UpdatedAt.Equal(updated))

	require.NoError(t, repo.Delete(ctx, tweet.TweetID))
	_, err = repo.GetByID(ctx, tweet.TweetID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
