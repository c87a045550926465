package ports

import "context"

// MetadataSeries is the provider-neutral view of one series returned by the
// external metadata API.
type MetadataSeries struct {
	SourceID  string
	Title     string
	AltTitles []string
	Synopsis  string
	CoverURL  string
	Genres    []string
	Year      int
	Status    string
	Episodes  []MetadataEpisode
}

// MetadataEpisode is one episode as reported by the provider.
type MetadataEpisode struct {
	Number          int
	Title           string
	DurationSeconds int
}

// MetadataProvider abstracts the third-party metadata API. Implementations
// are free to cache; callers treat results as an opaque external snapshot.
type MetadataProvider interface {
	Search(ctx context.Context, query string) ([]MetadataSeries, error)
	GetSeries(ctx context.Context, sourceID string) (*MetadataSeries, error)
}

// SyncJobInput is the DTO passed from the transport layer to the sync worker
// pool. Jobs for the same source ID are processed in order.
type SyncJobInput struct {
	SourceID    string
	RequestedBy string // user ID of the curator who triggered the import
}

// SyncService imports or refreshes one catalog entry from the provider.
type SyncService interface {
	Process(ctx context.Context, job SyncJobInput) error
}
