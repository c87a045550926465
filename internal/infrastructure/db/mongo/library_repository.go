package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

const (
	watchlistCollection = "watchlist"
	progressCollection  = "watch_progress"
)

// LibraryRepository stores per-user watch state. Watchlist documents are
// keyed by (user_id, anime_id), progress documents by (user_id, episode_id).
type LibraryRepository struct {
	watchlist *mongo.Collection
	progress  *mongo.Collection
}

func NewLibraryRepository(db *mongo.Database) *LibraryRepository {
	return &LibraryRepository{
		watchlist: db.Collection(watchlistCollection),
		progress:  db.Collection(progressCollection),
	}
}

var _ ports.LibraryRepository = (*LibraryRepository)(nil)

type mongoWatchlistEntry struct {
	UserID    string    `bson:"user_id"`
	AnimeID   string    `bson:"anime_id"`
	Status    string    `bson:"status"`
	Favorite  bool      `bson:"favorite"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type mongoWatchProgress struct {
	UserID          string    `bson:"user_id"`
	AnimeID         string    `bson:"anime_id"`
	EpisodeID       string    `bson:"episode_id"`
	PositionSeconds int       `bson:"position_seconds"`
	Completed       bool      `bson:"completed"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func (mw *mongoWatchlistEntry) toDomain() *domain.WatchlistEntry {
	return &domain.WatchlistEntry{
		UserID:    mw.UserID,
		AnimeID:   mw.AnimeID,
		Status:    domain.WatchStatus(mw.Status),
		Favorite:  mw.Favorite,
		CreatedAt: mw.CreatedAt.UTC(),
		UpdatedAt: mw.UpdatedAt.UTC(),
	}
}

func (mp *mongoWatchProgress) toDomain() *domain.WatchProgress {
	return &domain.WatchProgress{
		UserID:          mp.UserID,
		AnimeID:         mp.AnimeID,
		EpisodeID:       mp.EpisodeID,
		PositionSeconds: mp.PositionSeconds,
		Completed:       mp.Completed,
		UpdatedAt:       mp.UpdatedAt.UTC(),
	}
}

func (r *LibraryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	watchlistIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "anime_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := r.watchlist.Indexes().CreateMany(ctx, watchlistIndexes); err != nil {
		return fmt.Errorf("create watchlist indexes: %w", err)
	}

	progressIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "episode_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "anime_id", Value: 1}}},
	}
	if _, err := r.progress.Indexes().CreateMany(ctx, progressIndexes); err != nil {
		return fmt.Errorf("create progress indexes: %w", err)
	}
	return nil
}

func (r *LibraryRepository) UpsertProgress(ctx context.Context, p *domain.WatchProgress) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": p.UserID, "episode_id": p.EpisodeID}
	update := bson.M{
		"$set": bson.M{
			"anime_id":         p.AnimeID,
			"position_seconds": p.PositionSeconds,
			"completed":        p.Completed,
			"updated_at":       time.Now().UTC(),
		},
	}

	_, err := r.progress.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (r *LibraryRepository) FindProgress(ctx context.Context, userID, episodeID string) (*domain.WatchProgress, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoWatchProgress
	err := r.progress.FindOne(ctx, bson.M{"user_id": userID, "episode_id": episodeID}).Decode(&mp)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrEpisodeNotFound
		}
		return nil, fmt.Errorf("find progress: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *LibraryRepository) ListProgressByAnime(ctx context.Context, userID, animeID string) ([]*domain.WatchProgress, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.progress.Find(ctx, bson.M{"user_id": userID, "anime_id": animeID})
	if err != nil {
		return nil, fmt.Errorf("find progress: %w", err)
	}
	defer cur.Close(ctx)

	var items []*domain.WatchProgress
	for cur.Next(ctx) {
		var mp mongoWatchProgress
		if err := cur.Decode(&mp); err != nil {
			return nil, fmt.Errorf("decode progress: %w", err)
		}
		items = append(items, mp.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}
	return items, nil
}

func (r *LibraryRepository) UpsertWatchlistEntry(ctx context.Context, e *domain.WatchlistEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{"user_id": e.UserID, "anime_id": e.AnimeID}
	update := bson.M{
		"$set": bson.M{
			"status":     string(e.Status),
			"favorite":   e.Favorite,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	_, err := r.watchlist.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert watchlist entry: %w", err)
	}
	return nil
}

func (r *LibraryRepository) FindWatchlistEntry(ctx context.Context, userID, animeID string) (*domain.WatchlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mw mongoWatchlistEntry
	err := r.watchlist.FindOne(ctx, bson.M{"user_id": userID, "anime_id": animeID}).Decode(&mw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrWatchlistEntryNotFound
		}
		return nil, fmt.Errorf("find watchlist entry: %w", err)
	}
	return mw.toDomain(), nil
}

func (r *LibraryRepository) DeleteWatchlistEntry(ctx context.Context, userID, animeID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.watchlist.DeleteOne(ctx, bson.M{"user_id": userID, "anime_id": animeID})
	if err != nil {
		return fmt.Errorf("delete watchlist entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrWatchlistEntryNotFound
	}
	return nil
}

func (r *LibraryRepository) ListWatchlist(ctx context.Context, userID string, status domain.WatchStatus, favoritesOnly bool) ([]*domain.WatchlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{"user_id": userID}
	if status != "" {
		query["status"] = string(status)
	}
	if favoritesOnly {
		query["favorite"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.watchlist.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find watchlist: %w", err)
	}
	defer cur.Close(ctx)

	var items []*domain.WatchlistEntry
	for cur.Next(ctx) {
		var mw mongoWatchlistEntry
		if err := cur.Decode(&mw); err != nil {
			return nil, fmt.Errorf("decode watchlist entry: %w", err)
		}
		items = append(items, mw.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist: %w", err)
	}
	return items, nil
}
