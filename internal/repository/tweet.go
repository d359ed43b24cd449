package repository

import (
	"context"

	"github.com/google/uuid"

	"minitweet/internal/domain"
)

// TweetRepository defines persistence operations for Tweet records.
type TweetRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, tweet *domain.Tweet) error
	List(ctx context.Context) ([]domain.Tweet, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tweet, error)
	Update(ctx context.Context, id uuid.UUID, tweet *domain.Tweet) error
	Delete(ctx context.Context, id uuid.UUID) error
}
