package ports

import (
	"context"

	"github.com/aniwa/aniwa-server/internal/core/domain"
)

// PostCommentInput carries a new comment from an authenticated user.
type PostCommentInput struct {
	AnimeID   string
	EpisodeID string // optional
	Body      string
}

// ListCommentsResult is one page of comments.
type ListCommentsResult struct {
	Items []*domain.Comment
	Total int64
	Page  int
	Limit int
}

// CommentService covers posting, editing, and removing comments. Edit and
// delete are allowed to the comment's author and to moderators and above.
type CommentService interface {
	Post(ctx context.Context, author *domain.User, in PostCommentInput) (*domain.Comment, error)
	Edit(ctx context.Context, actor *domain.User, commentID, body string) (*domain.Comment, error)
	Delete(ctx context.Context, actor *domain.User, commentID string) error
	List(ctx context.Context, filter ListCommentsFilter) (*ListCommentsResult, error)
}
