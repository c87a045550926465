package ports

import (
	"context"

	"github.com/aniwa/aniwa-server/internal/core/domain"
)

// LibraryRepository persists per-user watch state: progress and watchlist.
type LibraryRepository interface {
	UpsertProgress(ctx context.Context, p *domain.WatchProgress) error
	FindProgress(ctx context.Context, userID, episodeID string) (*domain.WatchProgress, error)
	ListProgressByAnime(ctx context.Context, userID, animeID string) ([]*domain.WatchProgress, error)

	UpsertWatchlistEntry(ctx context.Context, e *domain.WatchlistEntry) error
	FindWatchlistEntry(ctx context.Context, userID, animeID string) (*domain.WatchlistEntry, error)
	DeleteWatchlistEntry(ctx context.Context, userID, animeID string) error
	// ListWatchlist returns a user's entries, optionally filtered by status
	// or favorites only.
	ListWatchlist(ctx context.Context, userID string, status domain.WatchStatus, favoritesOnly bool) ([]*domain.WatchlistEntry, error)
}
