package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

const (
	animeCollection    = "anime"
	episodesCollection = "episodes"
)

type CatalogRepository struct {
	anime    *mongo.Collection
	episodes *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{
		anime:    db.Collection(animeCollection),
		episodes: db.Collection(episodesCollection),
	}
}

var _ ports.CatalogRepository = (*CatalogRepository)(nil)

type mongoAnime struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	SourceID  string             `bson:"source_id,omitempty"`
	Title     string             `bson:"title"`
	AltTitles []string           `bson:"alt_titles,omitempty"`
	Synopsis  string             `bson:"synopsis,omitempty"`
	CoverURL  string             `bson:"cover_url,omitempty"`
	Genres    []string           `bson:"genres,omitempty"`
	Year      int                `bson:"year,omitempty"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type mongoEpisode struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	AnimeID         primitive.ObjectID `bson:"anime_id"`
	Number          int                `bson:"number"`
	Title           string             `bson:"title,omitempty"`
	VideoURL        string             `bson:"video_url"`
	DurationSeconds int                `bson:"duration_seconds,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func (ma *mongoAnime) toDomain() *domain.Anime {
	return &domain.Anime{
		ID:        ma.ID.Hex(),
		SourceID:  ma.SourceID,
		Title:     ma.Title,
		AltTitles: ma.AltTitles,
		Synopsis:  ma.Synopsis,
		CoverURL:  ma.CoverURL,
		Genres:    ma.Genres,
		Year:      ma.Year,
		Status:    domain.AiringStatus(ma.Status),
		CreatedAt: ma.CreatedAt.UTC(),
		UpdatedAt: ma.UpdatedAt.UTC(),
	}
}

func (me *mongoEpisode) toDomain() *domain.Episode {
	return &domain.Episode{
		ID:              me.ID.Hex(),
		AnimeID:         me.AnimeID.Hex(),
		Number:          me.Number,
		Title:           me.Title,
		VideoURL:        me.VideoURL,
		DurationSeconds: me.DurationSeconds,
		CreatedAt:       me.CreatedAt.UTC(),
		UpdatedAt:       me.UpdatedAt.UTC(),
	}
}

// EnsureIndexes creates catalog indexes. source_id is unique but sparse so
// hand-curated entries without a provider link are unconstrained.
func (r *CatalogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	animeIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "source_id", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "alt_titles", Value: "text"}}},
		{Keys: bson.D{{Key: "genres", Value: 1}}},
		{Keys: bson.D{{Key: "year", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	if _, err := r.anime.Indexes().CreateMany(ctx, animeIndexes); err != nil {
		return fmt.Errorf("create anime indexes: %w", err)
	}

	episodeIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "anime_id", Value: 1}, {Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.episodes.Indexes().CreateMany(ctx, episodeIndexes); err != nil {
		return fmt.Errorf("create episode indexes: %w", err)
	}
	return nil
}

func (r *CatalogRepository) CreateAnime(ctx context.Context, a *domain.Anime) (*domain.Anime, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	doc := animeToMongo(a)
	doc.CreatedAt = now
	doc.UpdatedAt = now

	res, err := r.anime.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateAnime
		}
		return nil, fmt.Errorf("insert anime: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *CatalogRepository) UpdateAnime(ctx context.Context, id string, a *domain.Anime) (*domain.Anime, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAnimeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"title":      a.Title,
		"alt_titles": a.AltTitles,
		"synopsis":   a.Synopsis,
		"cover_url":  a.CoverURL,
		"genres":     a.Genres,
		"year":       a.Year,
		"status":     string(a.Status),
		"updated_at": time.Now().UTC(),
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ma mongoAnime
	err = r.anime.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&ma)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAnimeNotFound
		}
		return nil, fmt.Errorf("update anime: %w", err)
	}
	return ma.toDomain(), nil
}

func (r *CatalogRepository) DeleteAnime(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAnimeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.anime.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete anime: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAnimeNotFound
	}

	// Episodes are owned by the series; remove them with it.
	if _, err := r.episodes.DeleteMany(ctx, bson.M{"anime_id": oid}); err != nil {
		return fmt.Errorf("delete episodes: %w", err)
	}
	return nil
}

func (r *CatalogRepository) FindAnimeByID(ctx context.Context, id string) (*domain.Anime, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAnimeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ma mongoAnime
	if err := r.anime.FindOne(ctx, bson.M{"_id": oid}).Decode(&ma); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAnimeNotFound
		}
		return nil, fmt.Errorf("find anime: %w", err)
	}
	return ma.toDomain(), nil
}

func (r *CatalogRepository) FindAnimeBySourceID(ctx context.Context, sourceID string) (*domain.Anime, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ma mongoAnime
	if err := r.anime.FindOne(ctx, bson.M{"source_id": sourceID}).Decode(&ma); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAnimeNotFound
		}
		return nil, fmt.Errorf("find anime by source: %w", err)
	}
	return ma.toDomain(), nil
}

func (r *CatalogRepository) UpsertAnimeBySourceID(ctx context.Context, a *domain.Anime) (*domain.Anime, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"title":      a.Title,
			"alt_titles": a.AltTitles,
			"synopsis":   a.Synopsis,
			"cover_url":  a.CoverURL,
			"genres":     a.Genres,
			"year":       a.Year,
			"status":     string(a.Status),
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"source_id":  a.SourceID,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var ma mongoAnime
	err := r.anime.FindOneAndUpdate(ctx, bson.M{"source_id": a.SourceID}, update, opts).Decode(&ma)
	if err != nil {
		return nil, fmt.Errorf("upsert anime: %w", err)
	}
	return ma.toDomain(), nil
}

func (r *CatalogRepository) ListAnime(ctx context.Context, filter ports.ListAnimeFilter) ([]*domain.Anime, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexQuote(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"alt_titles": pattern},
		}
	}
	if filter.Genre != "" {
		query["genres"] = filter.Genre
	}
	if filter.Year != 0 {
		query["year"] = filter.Year
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := r.anime.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count anime: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "title", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.anime.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find anime: %w", err)
	}
	defer cur.Close(ctx)

	var items []*domain.Anime
	for cur.Next(ctx) {
		var ma mongoAnime
		if err := cur.Decode(&ma); err != nil {
			return nil, 0, fmt.Errorf("decode anime: %w", err)
		}
		items = append(items, ma.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate anime: %w", err)
	}
	return items, total, nil
}

func (r *CatalogRepository) CreateEpisode(ctx context.Context, e *domain.Episode) (*domain.Episode, error) {
	animeOID, err := primitive.ObjectIDFromHex(e.AnimeID)
	if err != nil {
		return nil, domain.ErrAnimeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	doc := mongoEpisode{
		AnimeID:         animeOID,
		Number:          e.Number,
		Title:           e.Title,
		VideoURL:        e.VideoURL,
		DurationSeconds: e.DurationSeconds,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	res, err := r.episodes.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert episode: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *CatalogRepository) UpdateEpisode(ctx context.Context, id string, e *domain.Episode) (*domain.Episode, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrEpisodeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"number":           e.Number,
		"title":            e.Title,
		"video_url":        e.VideoURL,
		"duration_seconds": e.DurationSeconds,
		"updated_at":       time.Now().UTC(),
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var me mongoEpisode
	err = r.episodes.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&me)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrEpisodeNotFound
		}
		return nil, fmt.Errorf("update episode: %w", err)
	}
	return me.toDomain(), nil
}

func (r *CatalogRepository) DeleteEpisode(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrEpisodeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.episodes.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete episode: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEpisodeNotFound
	}
	return nil
}

func (r *CatalogRepository) FindEpisodeByID(ctx context.Context, id string) (*domain.Episode, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrEpisodeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var me mongoEpisode
	if err := r.episodes.FindOne(ctx, bson.M{"_id": oid}).Decode(&me); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrEpisodeNotFound
		}
		return nil, fmt.Errorf("find episode: %w", err)
	}
	return me.toDomain(), nil
}

func (r *CatalogRepository) ListEpisodes(ctx context.Context, animeID string) ([]*domain.Episode, error) {
	oid, err := primitive.ObjectIDFromHex(animeID)
	if err != nil {
		return nil, domain.ErrAnimeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	cur, err := r.episodes.Find(ctx, bson.M{"anime_id": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("find episodes: %w", err)
	}
	defer cur.Close(ctx)

	var items []*domain.Episode
	for cur.Next(ctx) {
		var me mongoEpisode
		if err := cur.Decode(&me); err != nil {
			return nil, fmt.Errorf("decode episode: %w", err)
		}
		items = append(items, me.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate episodes: %w", err)
	}
	return items, nil
}

func animeToMongo(a *domain.Anime) mongoAnime {
	return mongoAnime{
		SourceID:  a.SourceID,
		Title:     a.Title,
		AltTitles: a.AltTitles,
		Synopsis:  a.Synopsis,
		CoverURL:  a.CoverURL,
		Genres:    a.Genres,
		Year:      a.Year,
		Status:    string(a.Status),
	}
}
