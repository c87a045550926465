package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

// ListCache abstracts the short-TTL cache for catalog browse queries (Redis).
// A nil ListCache disables caching.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte)
	// InvalidateAll drops every cached page; called after catalog writes.
	InvalidateAll(ctx context.Context)
}

type CatalogService struct {
	repo   ports.CatalogRepository
	cache  ListCache
	logger zerolog.Logger
}

func NewCatalogService(repo ports.CatalogRepository, cache ListCache, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, logger: logger}
}

func (s *CatalogService) CreateAnime(ctx context.Context, in ports.CreateAnimeInput) (*domain.Anime, error) {
	created, err := s.repo.CreateAnime(ctx, animeFromInput(in))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info().Str("anime_id", created.ID).Str("title", created.Title).Msg("anime created")
	return created, nil
}

func (s *CatalogService) UpdateAnime(ctx context.Context, id string, in ports.CreateAnimeInput) (*domain.Anime, error) {
	updated, err := s.repo.UpdateAnime(ctx, id, animeFromInput(in))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *CatalogService) DeleteAnime(ctx context.Context, id string) error {
	if err := s.repo.DeleteAnime(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info().Str("anime_id", id).Msg("anime deleted")
	return nil
}

func (s *CatalogService) GetAnime(ctx context.Context, id string) (*domain.Anime, error) {
	return s.repo.FindAnimeByID(ctx, id)
}

func (s *CatalogService) ListAnime(ctx context.Context, filter ports.ListAnimeFilter) (*ports.ListAnimeResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	key := listCacheKey(filter)
	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx, key); ok {
			var cached ports.ListAnimeResult
			if err := json.Unmarshal(payload, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	items, total, err := s.repo.ListAnime(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &ports.ListAnimeResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			s.cache.Set(ctx, key, payload)
		}
	}
	return result, nil
}

func (s *CatalogService) AddEpisode(ctx context.Context, in ports.CreateEpisodeInput) (*domain.Episode, error) {
	if _, err := s.repo.FindAnimeByID(ctx, in.AnimeID); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateEpisode(ctx, episodeFromInput(in))
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("anime_id", in.AnimeID).Int("number", in.Number).Msg("episode added")
	return created, nil
}

func (s *CatalogService) UpdateEpisode(ctx context.Context, id string, in ports.CreateEpisodeInput) (*domain.Episode, error) {
	return s.repo.UpdateEpisode(ctx, id, episodeFromInput(in))
}

func (s *CatalogService) DeleteEpisode(ctx context.Context, id string) error {
	return s.repo.DeleteEpisode(ctx, id)
}

func (s *CatalogService) ListEpisodes(ctx context.Context, animeID string) ([]*domain.Episode, error) {
	if _, err := s.repo.FindAnimeByID(ctx, animeID); err != nil {
		return nil, err
	}
	return s.repo.ListEpisodes(ctx, animeID)
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
}

func animeFromInput(in ports.CreateAnimeInput) *domain.Anime {
	status := domain.AiringStatus(in.Status)
	switch status {
	case domain.AiringUpcoming, domain.AiringOngoing, domain.AiringFinished:
	default:
		status = domain.AiringFinished
	}
	return &domain.Anime{
		SourceID:  in.SourceID,
		Title:     in.Title,
		AltTitles: in.AltTitles,
		Synopsis:  in.Synopsis,
		CoverURL:  in.CoverURL,
		Genres:    in.Genres,
		Year:      in.Year,
		Status:    status,
	}
}

func episodeFromInput(in ports.CreateEpisodeInput) *domain.Episode {
	return &domain.Episode{
		AnimeID:         in.AnimeID,
		Number:          in.Number,
		Title:           in.Title,
		VideoURL:        in.VideoURL,
		DurationSeconds: in.DurationSeconds,
	}
}

func listCacheKey(f ports.ListAnimeFilter) string {
	return fmt.Sprintf("list:%s:%s:%d:%s:%d:%d", f.Search, f.Genre, f.Year, f.Status, f.Page, f.Limit)
}
