package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub comment repository
// ---------------------------------------------------------------------------

type stubCommentRepo struct {
	comments map[string]*domain.Comment
	nextID   int
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{comments: make(map[string]*domain.Comment)}
}

func (r *stubCommentRepo) Create(_ context.Context, c *domain.Comment) (*domain.Comment, error) {
	r.nextID++
	clone := *c
	clone.ID = strings.Repeat("c", 1) + "_" + time.Now().Format("150405") + "_" + string(rune('0'+r.nextID))
	r.comments[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubCommentRepo) FindByID(_ context.Context, id string) (*domain.Comment, error) {
	if c, ok := r.comments[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, domain.ErrCommentNotFound
}

func (r *stubCommentRepo) UpdateBody(_ context.Context, id, body string) (*domain.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	c.Body = body
	c.UpdatedAt = time.Now().UTC()
	clone := *c
	return &clone, nil
}

func (r *stubCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.comments[id]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *stubCommentRepo) List(_ context.Context, f ports.ListCommentsFilter) ([]*domain.Comment, int64, error) {
	var out []*domain.Comment
	for _, c := range r.comments {
		if c.AnimeID != f.AnimeID {
			continue
		}
		if f.EpisodeID != "" && c.EpisodeID != f.EpisodeID {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func newTestComments(t *testing.T) (*CommentService, *domain.Anime, *domain.Episode) {
	t.Helper()
	catalog := newStubCatalogRepo()
	svc := NewCommentService(newStubCommentRepo(), catalog, zerolog.Nop())

	anime, err := catalog.CreateAnime(context.Background(), &domain.Anime{Title: "X"})
	if err != nil {
		t.Fatalf("seed anime failed: %v", err)
	}
	episode, err := catalog.CreateEpisode(context.Background(), &domain.Episode{AnimeID: anime.ID, Number: 1, VideoURL: "u"})
	if err != nil {
		t.Fatalf("seed episode failed: %v", err)
	}
	return svc, anime, episode
}

var (
	commentAuthor = &domain.User{ID: "u_1", Username: "alice", Role: domain.RoleUser}
	otherUser     = &domain.User{ID: "u_2", Username: "bob", Role: domain.RoleUser}
	moderator     = &domain.User{ID: "u_3", Username: "mod", Role: domain.RoleModerator}
)

func TestCommentService_PostAndList(t *testing.T) {
	svc, anime, episode := newTestComments(t)
	ctx := context.Background()

	posted, err := svc.Post(ctx, commentAuthor, ports.PostCommentInput{
		AnimeID:   anime.ID,
		EpisodeID: episode.ID,
		Body:      "  best episode so far  ",
	})
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if posted.Body != "best episode so far" {
		t.Fatalf("body not trimmed: %q", posted.Body)
	}
	if posted.Username != "alice" {
		t.Fatalf("author username not denormalized: %+v", posted)
	}

	res, err := svc.List(ctx, ports.ListCommentsFilter{AnimeID: anime.ID, EpisodeID: episode.ID})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if res.Total != 1 {
		t.Fatalf("expected 1 comment, got %d", res.Total)
	}
}

func TestCommentService_PostValidation(t *testing.T) {
	svc, anime, _ := newTestComments(t)
	ctx := context.Background()

	if _, err := svc.Post(ctx, commentAuthor, ports.PostCommentInput{AnimeID: anime.ID, Body: "   "}); !errors.Is(err, domain.ErrCommentEmpty) {
		t.Fatalf("expected ErrCommentEmpty, got %v", err)
	}
	if _, err := svc.Post(ctx, commentAuthor, ports.PostCommentInput{AnimeID: anime.ID, Body: strings.Repeat("a", 2001)}); !errors.Is(err, domain.ErrCommentTooLong) {
		t.Fatalf("expected ErrCommentTooLong, got %v", err)
	}
	if _, err := svc.Post(ctx, commentAuthor, ports.PostCommentInput{AnimeID: "a_999", Body: "hi"}); !errors.Is(err, domain.ErrAnimeNotFound) {
		t.Fatalf("expected ErrAnimeNotFound, got %v", err)
	}
	if _, err := svc.Post(ctx, commentAuthor, ports.PostCommentInput{AnimeID: anime.ID, EpisodeID: "e_999", Body: "hi"}); !errors.Is(err, domain.ErrEpisodeNotFound) {
		t.Fatalf("expected ErrEpisodeNotFound, got %v", err)
	}
}

func TestCommentService_EditPermissions(t *testing.T) {
	svc, anime, _ := newTestComments(t)
	ctx := context.Background()

	posted, err := svc.Post(ctx, commentAuthor, ports.PostCommentInput{AnimeID: anime.ID, Body: "original"})
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}

	// The author and moderators may edit; other users may not.
	if _, err := svc.Edit(ctx, commentAuthor, posted.ID, "edited by author"); err != nil {
		t.Fatalf("author edit failed: %v", err)
	}
	if _, err := svc.Edit(ctx, moderator, posted.ID, "edited by moderator"); err != nil {
		t.Fatalf("moderator edit failed: %v", err)
	}
	if _, err := svc.Edit(ctx, otherUser, posted.ID, "hijacked"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCommentService_DeletePermissions(t *testing.T) {
	svc, anime, _ := newTestComments(t)
	ctx := context.Background()

	posted, err := svc.Post(ctx, commentAuthor, ports.PostCommentInput{AnimeID: anime.ID, Body: "to be removed"})
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}

	if err := svc.Delete(ctx, otherUser, posted.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, commentAuthor, posted.ID); err != nil {
		t.Fatalf("author delete failed: %v", err)
	}
	if err := svc.Delete(ctx, moderator, posted.ID); !errors.Is(err, domain.ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound after delete, got %v", err)
	}
}
