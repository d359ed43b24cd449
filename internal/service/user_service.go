package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"minitweet/internal/domain"
	"minitweet/internal/repository"
)

var (
	// ErrInvalidInput indicates a payload that failed validation before
	// any storage access.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password during login; the two cases are deliberately not
	// distinguishable by the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registering with a user id or email
	// that is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound indicates that no user matches the requested id.
	ErrUserNotFound = errors.New("user not found")
)

// RegisterInput is the payload for user registration. The id is assigned
// by the client and immutable afterwards.
type RegisterInput struct {
	UserID    uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Birthday  *domain.Date
	Password  string
}

// UserInput carries the full replacement state for a wholesale update.
// Omitted optional fields revert to their defaults.
type UserInput struct {
	Email     string
	FirstName string
	LastName  string
	Birthday  *domain.Date
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id uuid.UUID, in UserInput) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := validateProfile(in.Email, in.FirstName, in.LastName); err != nil {
		return nil, err
	}
	if l := utf8.RuneCountInString(in.Password); l < 8 || l > 64 {
		return nil, fmt.Errorf("%w: password must be 8-64 characters", ErrInvalidInput)
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		UserID:       in.UserID,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Birthday:     in.Birthday,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return users, nil
}

// Update replaces the whole record; the stored password hash is carried
// over since credentials are not part of the update payload.
func (s *userService) Update(ctx context.Context, id uuid.UUID, in UserInput) (*domain.User, error) {
	if err := validateProfile(in.Email, in.FirstName, in.LastName); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user := &domain.User{
		UserID:       id,
		Email:        strings.TrimSpace(in.Email),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Birthday:     in.Birthday,
		PasswordHash: existing.PasswordHash,
	}

	if err := s.users.Update(ctx, id, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func validateProfile(email, firstName, lastName string) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if l := utf8.RuneCountInString(firstName); l < 1 || l > 50 {
		return fmt.Errorf("%w: first name must be 1-50 characters", ErrInvalidInput)
	}
	if l := utf8.RuneCountInString(lastName); l < 1 || l > 50 {
		return fmt.Errorf("%w: last name must be 1-50 characters", ErrInvalidInput)
	}
	return nil
}
