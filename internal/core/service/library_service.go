package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

type LibraryService struct {
	repo    ports.LibraryRepository
	catalog ports.CatalogRepository
	logger  zerolog.Logger
}

func NewLibraryService(repo ports.LibraryRepository, catalog ports.CatalogRepository, logger zerolog.Logger) *LibraryService {
	return &LibraryService{repo: repo, catalog: catalog, logger: logger}
}

// SaveProgress upserts the user's position in one episode. The episode is
// resolved first so progress rows always carry a valid anime reference.
func (s *LibraryService) SaveProgress(ctx context.Context, in ports.SaveProgressInput) (*domain.WatchProgress, error) {
	episode, err := s.catalog.FindEpisodeByID(ctx, in.EpisodeID)
	if err != nil {
		return nil, err
	}
	if in.PositionSeconds < 0 {
		in.PositionSeconds = 0
	}

	progress := &domain.WatchProgress{
		UserID:          in.UserID,
		AnimeID:         episode.AnimeID,
		EpisodeID:       in.EpisodeID,
		PositionSeconds: in.PositionSeconds,
		Completed:       in.Completed,
		UpdatedAt:       time.Now().UTC(),
	}
	if err := s.repo.UpsertProgress(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *LibraryService) GetAnimeProgress(ctx context.Context, userID, animeID string) ([]*domain.WatchProgress, error) {
	return s.repo.ListProgressByAnime(ctx, userID, animeID)
}

// SetWatchStatus creates the watchlist entry when absent; on an existing
// entry it enforces the watch status state machine.
func (s *LibraryService) SetWatchStatus(ctx context.Context, userID, animeID string, status domain.WatchStatus) (*domain.WatchlistEntry, error) {
	if _, err := s.catalog.FindAnimeByID(ctx, animeID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	existing, err := s.repo.FindWatchlistEntry(ctx, userID, animeID)
	switch {
	case err == nil:
		if existing.Status == status {
			return existing, nil
		}
		if !existing.Status.CanTransitionTo(status) {
			return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidWatchTransition, existing.Status, status)
		}
		existing.Status = status
		existing.UpdatedAt = now
	case errors.Is(err, domain.ErrWatchlistEntryNotFound):
		existing = &domain.WatchlistEntry{
			UserID:    userID,
			AnimeID:   animeID,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		}
	default:
		return nil, err
	}

	if err := s.repo.UpsertWatchlistEntry(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *LibraryService) SetFavorite(ctx context.Context, userID, animeID string, favorite bool) (*domain.WatchlistEntry, error) {
	if _, err := s.catalog.FindAnimeByID(ctx, animeID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry, err := s.repo.FindWatchlistEntry(ctx, userID, animeID)
	switch {
	case err == nil:
		entry.Favorite = favorite
		entry.UpdatedAt = now
	case errors.Is(err, domain.ErrWatchlistEntryNotFound):
		// Favoriting something not yet on the list implies planning to watch it.
		entry = &domain.WatchlistEntry{
			UserID:    userID,
			AnimeID:   animeID,
			Status:    domain.WatchPlanToWatch,
			Favorite:  favorite,
			CreatedAt: now,
			UpdatedAt: now,
		}
	default:
		return nil, err
	}

	if err := s.repo.UpsertWatchlistEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *LibraryService) RemoveFromWatchlist(ctx context.Context, userID, animeID string) error {
	return s.repo.DeleteWatchlistEntry(ctx, userID, animeID)
}

func (s *LibraryService) ListWatchlist(ctx context.Context, userID string, status domain.WatchStatus, favoritesOnly bool) ([]*domain.WatchlistEntry, error) {
	return s.repo.ListWatchlist(ctx, userID, status, favoritesOnly)
}
