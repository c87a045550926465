package ports

import (
	"context"

	"github.com/aniwa/aniwa-server/internal/core/domain"
)

// CreateAnimeInput carries the fields a curator supplies for a new entry.
type CreateAnimeInput struct {
	Title     string
	AltTitles []string
	Synopsis  string
	CoverURL  string
	Genres    []string
	Year      int
	Status    string
	SourceID  string // optional link to the metadata provider
}

// CreateEpisodeInput carries the fields for a new externally hosted episode.
type CreateEpisodeInput struct {
	AnimeID         string
	Number          int
	Title           string
	VideoURL        string
	DurationSeconds int
}

// ListAnimeResult is one page of catalog entries.
type ListAnimeResult struct {
	Items      []*domain.Anime
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// CatalogService defines use-case operations over the anime catalog. Writes
// are curator operations; the transport layer gates them behind moderator+.
type CatalogService interface {
	CreateAnime(ctx context.Context, in CreateAnimeInput) (*domain.Anime, error)
	UpdateAnime(ctx context.Context, id string, in CreateAnimeInput) (*domain.Anime, error)
	DeleteAnime(ctx context.Context, id string) error
	GetAnime(ctx context.Context, id string) (*domain.Anime, error)
	// ListAnime serves browse/search; results for pure search queries are
	// cached in Redis for a short TTL.
	ListAnime(ctx context.Context, filter ListAnimeFilter) (*ListAnimeResult, error)

	AddEpisode(ctx context.Context, in CreateEpisodeInput) (*domain.Episode, error)
	UpdateEpisode(ctx context.Context, id string, in CreateEpisodeInput) (*domain.Episode, error)
	DeleteEpisode(ctx context.Context, id string) error
	ListEpisodes(ctx context.Context, animeID string) ([]*domain.Episode, error)
}
