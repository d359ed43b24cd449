package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tweet is a single post. By holds a fully denormalized snapshot of the
// author taken when the tweet was posted; later edits to the user record
// do not propagate to historical tweets.
type Tweet struct {
	TweetID   uuid.UUID  `json:"tweet_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	By        User       `json:"by"`
}
