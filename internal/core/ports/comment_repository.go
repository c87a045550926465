package ports

import (
	"context"

	"github.com/aniwa/aniwa-server/internal/core/domain"
)

// ListCommentsFilter selects comments for a series or a single episode.
type ListCommentsFilter struct {
	AnimeID   string
	EpisodeID string // optional: restrict to one episode
	Page      int    // 1-based
	Limit     int
}

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error)
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	UpdateBody(ctx context.Context, id, body string) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListCommentsFilter) ([]*domain.Comment, int64, error)
}
