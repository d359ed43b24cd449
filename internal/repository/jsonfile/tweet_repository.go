package jsonfile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"minitweet/internal/domain"
	"minitweet/internal/repository"
	"minitweet/internal/store"
)

// TweetRepository persists tweets in tweets.json under the data directory.
type TweetRepository struct {
	col *store.Collection[domain.Tweet]
}

func NewTweetRepository(dataDir string) (repository.TweetRepository, error) {
	col, err := store.NewCollection(
		filepath.Join(dataDir, "tweets.json"),
		func(t domain.Tweet) string { return t.TweetID.String() },
	)
	if err != nil {
		return nil, fmt.Errorf("open tweets collection: %w", err)
	}
	return &TweetRepository{col: col}, nil
}

func (r *TweetRepository) Init(ctx context.Context) error {
	return r.col.Init(ctx)
}

func (r *TweetRepository) Create(ctx context.Context, tweet *domain.Tweet) error {
	return r.col.Append(ctx, *tweet)
}

func (r *TweetRepository) List(ctx context.Context) ([]domain.Tweet, error) {
	return r.col.ListAll(ctx)
}

func (r *TweetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tweet, error) {
	tweet, err := r.col.FindByKey(ctx, id.String())
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

func (r *TweetRepository) Update(ctx context.Context, id uuid.UUID, tweet *domain.Tweet) error {
	return r.col.ReplaceByKey(ctx, id.String(), *tweet)
}

func (r *TweetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.col.DeleteByKey(ctx, id.String())
}

var _ repository.TweetRepository = (*TweetRepository)(nil)
