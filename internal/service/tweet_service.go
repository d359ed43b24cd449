package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"minitweet/internal/domain"
	"minitweet/internal/repository"
)

var (
	// ErrTweetExists is returned when posting a tweet id that is already taken.
	ErrTweetExists = errors.New("tweet already exists")
	// ErrTweetNotFound indicates that no tweet matches the requested id.
	ErrTweetNotFound = errors.New("tweet not found")
)

// PostTweetInput is the payload for posting a tweet. Authorship is
// asserted by the caller: the full author snapshot travels in the payload
// and is embedded in the stored record as-is (minus credentials).
type PostTweetInput struct {
	TweetID uuid.UUID
	Content string
	By      domain.User
}

// TweetService describes tweet lifecycle operations.
type TweetService interface {
	Post(ctx context.Context, in PostTweetInput) (*domain.Tweet, error)
	List(ctx context.Context) ([]domain.Tweet, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Tweet, error)
	Update(ctx context.Context, id uuid.UUID, content string) (*domain.Tweet, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type tweetService struct {
	tweets repository.TweetRepository
	now    func() time.Time
}

func NewTweetService(tweets repository.TweetRepository) TweetService {
	return &tweetService{
		tweets: tweets,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *tweetService) Post(ctx context.Context, in PostTweetInput) (*domain.Tweet, error) {
	if in.TweetID == uuid.Nil {
		return nil, fmt.Errorf("%w: tweet id is required", ErrInvalidInput)
	}
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}
	if in.By.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: author user id is required", ErrInvalidInput)
	}

	tweet := &domain.Tweet{
		TweetID:   in.TweetID,
		Content:   in.Content,
		CreatedAt: s.now(),
		By:        in.By.Sanitized(),
	}

	if err := s.tweets.Create(ctx, tweet); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrTweetExists
		}
		return nil, err
	}
	return tweet, nil
}

func (s *tweetService) List(ctx context.Context) ([]domain.Tweet, error) {
	return s.tweets.List(ctx)
}

func (s *tweetService) Get(ctx context.Context, id uuid.UUID) (*domain.Tweet, error) {
	tweet, err := s.tweets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTweetNotFound
		}
		return nil, err
	}
	return tweet, nil
}

// Update rewrites the content of an existing tweet. The author snapshot
// and creation time are preserved; updated_at is refreshed.
func (s *tweetService) Update(ctx context.Context, id uuid.UUID, content string) (*domain.Tweet, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	existing, err := s.tweets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTweetNotFound
		}
		return nil, err
	}

	updated := s.now()
	existing.Content = content
	existing.UpdatedAt = &updated

	if err := s.tweets.Update(ctx, id, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTweetNotFound
		}
		return nil, err
	}
	return existing, nil
}

func (s *tweetService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tweets.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTweetNotFound
		}
		return err
	}
	return nil
}

func validateContent(content string) error {
	if l := utf8.RuneCountInString(content); l < 1 || l > 256 {
		return fmt.Errorf("%w: content must be 1-256 characters", ErrInvalidInput)
	}
	return nil
}
