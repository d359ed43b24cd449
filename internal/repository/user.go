package repository

import (
	"context"

	"github.com/google/uuid"

	"minitweet/internal/domain"
	"minitweet/internal/store"
)

// Sentinel errors shared by all repository backends.
var (
	ErrNotFound = store.ErrNotFound
	ErrConflict = store.ErrKeyConflict
)

// UserRepository defines persistence operations for User records.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id uuid.UUID, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}
