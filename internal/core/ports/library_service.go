package ports

import (
	"context"

	"github.com/aniwa/aniwa-server/internal/core/domain"
)

// SaveProgressInput records how far a user got into an episode.
type SaveProgressInput struct {
	UserID          string
	EpisodeID       string
	PositionSeconds int
	Completed       bool
}

// LibraryService covers watch progress and watchlist/favorites.
type LibraryService interface {
	SaveProgress(ctx context.Context, in SaveProgressInput) (*domain.WatchProgress, error)
	GetAnimeProgress(ctx context.Context, userID, animeID string) ([]*domain.WatchProgress, error)

	// SetWatchStatus creates the entry when absent (any initial status is
	// allowed) and otherwise enforces the watch status state machine.
	SetWatchStatus(ctx context.Context, userID, animeID string, status domain.WatchStatus) (*domain.WatchlistEntry, error)
	SetFavorite(ctx context.Context, userID, animeID string, favorite bool) (*domain.WatchlistEntry, error)
	RemoveFromWatchlist(ctx context.Context, userID, animeID string) error
	ListWatchlist(ctx context.Context, userID string, status domain.WatchStatus, favoritesOnly bool) ([]*domain.WatchlistEntry, error)
}
