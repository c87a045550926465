package ports

import (
	"context"

	"github.com/aniwa/aniwa-server/internal/core/domain"
)

// ListAnimeFilter carries all query parameters for browsing the catalog.
type ListAnimeFilter struct {
	Search string // optional: partial match on title or alt_titles
	Genre  string // optional: exact genre match
	Year   int    // optional
	Status string // optional: airing status
	Page   int    // 1-based
	Limit  int    // capped at 100 by the service
}

// CatalogRepository defines persistence operations for the anime catalog.
type CatalogRepository interface {
	CreateAnime(ctx context.Context, a *domain.Anime) (*domain.Anime, error)
	UpdateAnime(ctx context.Context, id string, a *domain.Anime) (*domain.Anime, error)
	DeleteAnime(ctx context.Context, id string) error
	FindAnimeByID(ctx context.Context, id string) (*domain.Anime, error)
	FindAnimeBySourceID(ctx context.Context, sourceID string) (*domain.Anime, error)
	// UpsertAnimeBySourceID inserts or refreshes a catalog entry imported from
	// the external metadata provider, keyed by its source ID.
	UpsertAnimeBySourceID(ctx context.Context, a *domain.Anime) (*domain.Anime, error)
	// ListAnime returns a page of entries matching filter and the total count.
	ListAnime(ctx context.Context, filter ListAnimeFilter) ([]*domain.Anime, int64, error)

	CreateEpisode(ctx context.Context, e *domain.Episode) (*domain.Episode, error)
	UpdateEpisode(ctx context.Context, id string, e *domain.Episode) (*domain.Episode, error)
	DeleteEpisode(ctx context.Context, id string) error
	FindEpisodeByID(ctx context.Context, id string) (*domain.Episode, error)
	ListEpisodes(ctx context.Context, animeID string) ([]*domain.Episode, error)
}
