package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aniwa/aniwa-server/internal/api"
	"github.com/aniwa/aniwa-server/internal/core/service"
	mongodb "github.com/aniwa/aniwa-server/internal/infrastructure/db/mongo"
	redisdb "github.com/aniwa/aniwa-server/internal/infrastructure/db/redis"
	"github.com/aniwa/aniwa-server/internal/infrastructure/metadata"
	"github.com/aniwa/aniwa-server/internal/infrastructure/queue"
	"github.com/aniwa/aniwa-server/internal/pkg/config"
	"github.com/aniwa/aniwa-server/internal/pkg/password"
	"github.com/aniwa/aniwa-server/internal/pkg/token"
	"github.com/aniwa/aniwa-server/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(client, db)
	catalogRepo := mongodb.NewCatalogRepository(db)
	libraryRepo := mongodb.NewLibraryRepository(db)
	commentRepo := mongodb.NewCommentRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users":    userRepo.EnsureIndexes,
		"catalog":  catalogRepo.EnsureIndexes,
		"library":  libraryRepo.EnsureIndexes,
		"comments": commentRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index setup failed")
		}
	}

	// --- Services ---
	hasher := password.NewHasher(password.DefaultCost)
	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	listCache := redisdb.NewListCache(rdb, log)

	authService := service.NewAuthService(userRepo, hasher, tokens, log)
	catalogService := service.NewCatalogService(catalogRepo, listCache, log)
	libraryService := service.NewLibraryService(libraryRepo, catalogRepo, log)
	commentService := service.NewCommentService(commentRepo, catalogRepo, log)

	provider := metadata.NewClient(cfg.Metadata.BaseURL, log)
	syncService := service.NewSyncService(provider, catalogRepo, listCache, log)

	if cfg.Owner.Password != "" {
		if err := authService.EnsureSiteOwner(ctx, cfg.Owner.Username, cfg.Owner.Email, cfg.Owner.Password); err != nil {
			log.Fatal().Err(err).Msg("site owner bootstrap failed")
		}
	}

	// --- Workers ---
	dispatcher := queue.NewDispatcher(cfg.Sync.Workers, syncService, log)
	dispatcher.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:       authService,
		Catalog:    catalogService,
		Library:    libraryService,
		Comments:   commentService,
		Dispatcher: dispatcher,
		Tokens:     tokens,
		Mongo:      db,
		Redis:      rdb,
		Logger:     log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
