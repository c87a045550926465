package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

const commentMaxLen = 2000

type CommentService struct {
	repo    ports.CommentRepository
	catalog ports.CatalogRepository
	logger  zerolog.Logger
}

func NewCommentService(repo ports.CommentRepository, catalog ports.CatalogRepository, logger zerolog.Logger) *CommentService {
	return &CommentService{repo: repo, catalog: catalog, logger: logger}
}

func (s *CommentService) Post(ctx context.Context, author *domain.User, in ports.PostCommentInput) (*domain.Comment, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, domain.ErrCommentEmpty
	}
	if len(body) > commentMaxLen {
		return nil, domain.ErrCommentTooLong
	}

	if _, err := s.catalog.FindAnimeByID(ctx, in.AnimeID); err != nil {
		return nil, err
	}
	if in.EpisodeID != "" {
		if _, err := s.catalog.FindEpisodeByID(ctx, in.EpisodeID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	return s.repo.Create(ctx, &domain.Comment{
		AnimeID:   in.AnimeID,
		EpisodeID: in.EpisodeID,
		UserID:    author.ID,
		Username:  author.Username,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Edit is allowed to the comment's author and to moderators and above.
func (s *CommentService) Edit(ctx context.Context, actor *domain.User, commentID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrCommentEmpty
	}
	if len(body) > commentMaxLen {
		return nil, domain.ErrCommentTooLong
	}

	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, comment.UserID) {
		return nil, domain.ErrForbidden
	}
	return s.repo.UpdateBody(ctx, commentID, body)
}

func (s *CommentService) Delete(ctx context.Context, actor *domain.User, commentID string) error {
	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if !canModify(actor, comment.UserID) {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, commentID); err != nil {
		return err
	}
	s.logger.Info().Str("comment_id", commentID).Str("actor_id", actor.ID).Msg("comment deleted")
	return nil
}

func (s *CommentService) List(ctx context.Context, filter ports.ListCommentsFilter) (*ports.ListCommentsResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 50
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.ListCommentsResult{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func canModify(actor *domain.User, ownerID string) bool {
	if actor == nil {
		return false
	}
	return actor.ID == ownerID || actor.Role.AtLeast(domain.RoleModerator)
}
