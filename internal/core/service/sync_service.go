package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

type syncService struct {
	provider ports.MetadataProvider
	catalog  ports.CatalogRepository
	cache    ListCache
	log      zerolog.Logger
}

// NewSyncService returns a SyncService that imports catalog entries from the
// external metadata provider.
func NewSyncService(provider ports.MetadataProvider, catalog ports.CatalogRepository, cache ListCache, log zerolog.Logger) ports.SyncService {
	return &syncService{provider: provider, catalog: catalog, cache: cache, log: log}
}

// Process fetches one series from the provider and upserts it into the
// catalog keyed by source ID, so re-running a sync refreshes rather than
// duplicates.
func (s *syncService) Process(ctx context.Context, job ports.SyncJobInput) error {
	series, err := s.provider.GetSeries(ctx, job.SourceID)
	if err != nil {
		return fmt.Errorf("sync %s: fetch metadata: %w", job.SourceID, err)
	}

	entry := &domain.Anime{
		SourceID:  series.SourceID,
		Title:     series.Title,
		AltTitles: series.AltTitles,
		Synopsis:  series.Synopsis,
		CoverURL:  series.CoverURL,
		Genres:    series.Genres,
		Year:      series.Year,
		Status:    mapAiringStatus(series.Status),
	}

	saved, err := s.catalog.UpsertAnimeBySourceID(ctx, entry)
	if err != nil {
		return fmt.Errorf("sync %s: upsert: %w", job.SourceID, err)
	}

	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}

	s.log.Info().
		Str("source_id", job.SourceID).
		Str("anime_id", saved.ID).
		Str("requested_by", job.RequestedBy).
		Int("provider_episodes", len(series.Episodes)).
		Msg("catalog entry synced")
	return nil
}

// mapAiringStatus normalizes the provider's free-form status strings.
func mapAiringStatus(s string) domain.AiringStatus {
	switch s {
	case "upcoming", "not_yet_aired", "announced":
		return domain.AiringUpcoming
	case "ongoing", "airing", "releasing":
		return domain.AiringOngoing
	default:
		return domain.AiringFinished
	}
}
