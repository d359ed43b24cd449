package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"minitweet/internal/domain"
	"minitweet/internal/repository"
)

const createTweetsTable = `
CREATE TABLE IF NOT EXISTS tweets (
	tweet_id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT,
	author TEXT NOT NULL
);
`

type TweetRepository struct {
	db *sql.DB
}

func NewTweetRepository(db *sql.DB) repository.TweetRepository {
	return &TweetRepository{db: db}
}

func (r *TweetRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTweetsTable); err != nil {
		return fmt.Errorf("create tweets table: %w", err)
	}
	return nil
}

func (r *TweetRepository) Create(ctx context.Context, tweet *domain.Tweet) error {
	author, err := json.Marshal(tweet.By)
	if err != nil {
		return fmt.Errorf("encode tweet author: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO tweets (tweet_id, content, created_at, updated_at, author)
VALUES (?, ?, ?, ?, ?)`,
		tweet.TweetID.String(),
		tweet.Content,
		tweet.CreatedAt.Format(time.RFC3339Nano),
		timestampValue(tweet.UpdatedAt),
		string(author),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert tweet: %w", err)
	}
	return nil
}

func (r *TweetRepository) List(ctx context.Context) ([]domain.Tweet, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT tweet_id, content, created_at, updated_at, author
FROM tweets
ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list tweets: %w", err)
	}
	defer rows.Close()

	var tweets []domain.Tweet
	for rows.Next() {
		tweet, err := scanTweet(rows)
		if err != nil {
			return nil, err
		}
		tweets = append(tweets, *tweet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tweets: %w", err)
	}
	return tweets, nil
}

func (r *TweetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tweet, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT tweet_id, content, created_at, updated_at, author
FROM tweets
WHERE tweet_id = ?`,
		id.String(),
	)
	return scanTweet(row)
}

func (r *TweetRepository) Update(ctx context.Context, id uuid.UUID, tweet *domain.Tweet) error {
	author, err := json.Marshal(tweet.By)
	if err != nil {
		return fmt.Errorf("encode tweet author: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update tweet: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM tweets WHERE tweet_id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete tweet for update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tweet rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO tweets (tweet_id, content, created_at, updated_at, author)
VALUES (?, ?, ?, ?, ?)`,
		tweet.TweetID.String(),
		tweet.Content,
		tweet.CreatedAt.Format(time.RFC3339Nano),
		timestampValue(tweet.UpdatedAt),
		string(author),
	); err != nil {
		return fmt.Errorf("reinsert tweet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update tweet: %w", err)
	}
	return nil
}

func (r *TweetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tweets WHERE tweet_id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete tweet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tweet rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func timestampValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func scanTweet(row interface {
	Scan(dest ...any) error
}) (*domain.Tweet, error) {
	var (
		tweet     domain.Tweet
		rawID     string
		createdAt string
		updatedAt sql.NullString
		author    string
	)
	if err := row.Scan(&rawID, &tweet.Content, &createdAt, &updatedAt, &author); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan tweet: %w", err)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse tweet id: %w", err)
	}
	tweet.TweetID = id

	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse tweet created_at: %w", err)
	}
	tweet.CreatedAt = created

	if updatedAt.Valid && updatedAt.String != "" {
		updated, err := time.Parse(time.RFC3339Nano, updatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse tweet updated_at: %w", err)
		}
		tweet.UpdatedAt = &updated
	}

	if err := json.Unmarshal([]byte(author), &tweet.By); err != nil {
		return nil, fmt.Errorf("decode tweet author: %w", err)
	}
	return &tweet, nil
}
