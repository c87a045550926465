package domain

import (
	"errors"
	"time"
)

var ErrCommentNotFound = errors.New("comment not found")
var ErrCommentTooLong = errors.New("comment must be at most 2000 characters")
var ErrCommentEmpty = errors.New("comment cannot be empty")

// Comment is a user remark attached to a series or, when EpisodeID is set,
// to a specific episode.
type Comment struct {
	ID        string    `json:"id"`
	AnimeID   string    `json:"anime_id"`
	EpisodeID string    `json:"episode_id,omitempty"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
