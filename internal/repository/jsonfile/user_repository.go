// Package jsonfile implements the repositories on top of the flat-file
// record store, preserving the on-disk contract of one JSON array per
// entity type.
package jsonfile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"minitweet/internal/domain"
	"minitweet/internal/repository"
	"minitweet/internal/store"
)

// UserRepository persists users in users.json under the data directory.
type UserRepository struct {
	col *store.Collection[domain.User]
}

func NewUserRepository(dataDir string) (repository.UserRepository, error) {
	col, err := store.NewCollection(
		filepath.Join(dataDir, "users.json"),
		func(u domain.User) string { return u.UserID.String() },
	)
	if err != nil {
		return nil, fmt.Errorf("open users collection: %w", err)
	}
	return &UserRepository{col: col}, nil
}

func (r *UserRepository) Init(ctx context.Context) error {
	return r.col.Init(ctx)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.col.Append(ctx, *user)
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.col.ListAll(ctx)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := r.col.FindByKey(ctx, id.String())
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns the first record matching email in storage order.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.col.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, user *domain.User) error {
	return r.col.ReplaceByKey(ctx, id.String(), *user)
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.col.DeleteByKey(ctx, id.String())
}

var _ repository.UserRepository = (*UserRepository)(nil)
