package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aniwa/aniwa-server/internal/api/handler"
	"github.com/aniwa/aniwa-server/internal/api/middleware"
	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
	"github.com/aniwa/aniwa-server/internal/pkg/token"
)

// Dependencies carries everything the router needs to register routes.
type Dependencies struct {
	Auth       ports.AuthService
	Catalog    ports.CatalogService
	Library    ports.LibraryService
	Comments   ports.CommentService
	Dispatcher handler.SyncDispatcher
	Tokens     *token.Manager
	Mongo      *mongo.Database
	Redis      *redis.Client
	Logger     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("aniwa"))

	authRequired := middleware.Auth(deps.Tokens)
	moderatorOnly := middleware.RequireRole(domain.RoleModerator)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Auth)
	adminHandler := handler.NewAdminHandler(deps.Auth)
	catalogHandler := handler.NewCatalogHandler(deps.Catalog)
	libraryHandler := handler.NewLibraryHandler(deps.Library)
	commentHandler := handler.NewCommentHandler(deps.Comments, deps.Auth)
	syncHandler := handler.NewSyncHandler(deps.Dispatcher)

	// --- Health probes and operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	v1 := e.Group("/v1")

	// --- Auth ---
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// --- Own account ---
	me := v1.Group("/users/me", authRequired)
	me.GET("", userHandler.Me)
	me.PUT("/password", userHandler.ChangePassword)
	me.PUT("/username", userHandler.ChangeUsername)
	me.PATCH("/profile", userHandler.UpdateProfile)

	// --- Catalog: public reads, curator writes ---
	v1.GET("/anime", catalogHandler.List)
	v1.GET("/anime/:id", catalogHandler.Get)
	v1.GET("/anime/:id/episodes", catalogHandler.ListEpisodes)
	v1.GET("/anime/:id/comments", commentHandler.List)

	curator := v1.Group("", authRequired, moderatorOnly)
	curator.POST("/anime", catalogHandler.Create)
	curator.PUT("/anime/:id", catalogHandler.Update)
	curator.DELETE("/anime/:id", catalogHandler.Delete)
	curator.POST("/anime/:id/episodes", catalogHandler.AddEpisode)
	curator.PUT("/episodes/:id", catalogHandler.UpdateEpisode)
	curator.DELETE("/episodes/:id", catalogHandler.DeleteEpisode)

	// --- Comments: authenticated writes, moderation enforced in the service ---
	authed := v1.Group("", authRequired)
	authed.POST("/anime/:id/comments", commentHandler.Post)
	authed.PUT("/comments/:id", commentHandler.Edit)
	authed.DELETE("/comments/:id", commentHandler.Delete)

	// --- Personal library ---
	library := v1.Group("/library", authRequired)
	library.PUT("/progress/:episodeID", libraryHandler.SaveProgress)
	library.GET("/progress/anime/:animeID", libraryHandler.AnimeProgress)
	library.GET("/watchlist", libraryHandler.Watchlist)
	library.PUT("/watchlist/:animeID", libraryHandler.SetWatchStatus)
	library.PUT("/watchlist/:animeID/favorite", libraryHandler.SetFavorite)
	library.DELETE("/watchlist/:animeID", libraryHandler.RemoveFromWatchlist)

	// --- Administration ---
	admin := v1.Group("/admin", authRequired, adminOnly)
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/role", adminHandler.ChangeRole)
	admin.GET("/users/:id/roles", adminHandler.RoleHistory)
	admin.POST("/sync", syncHandler.Trigger)

	return e
}
