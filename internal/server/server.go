package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/config"
	"github.com/pageza/recipe-app/backend/internal/api"
	"github.com/pageza/recipe-app/backend/internal/database"
	"github.com/pageza/recipe-app/backend/internal/logging"
	"github.com/pageza/recipe-app/backend/internal/middleware"
	"github.com/pageza/recipe-app/backend/internal/router"
	"github.com/pageza/recipe-app/backend/internal/service"
	"github.com/pageza/recipe-app/backend/internal/storage"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
}

// Dependencies are the opened backends the server is built on. Redis may be nil.
type Dependencies struct {
	DB    *gorm.DB
	Blobs storage.BlobStore
	Redis *redis.Client
}

// New wires services, handlers and routes
func New(cfg *config.Config, deps Dependencies) *Server {
	authService := service.NewAuthService(deps.DB, cfg.JWTSecret)
	recipeService := service.NewRecipeService(deps.DB, deps.Blobs, cfg.MaxUploadBytes).
		WithMaxImagePixels(cfg.MaxImagePixels)

	recipeHandler := api.NewRecipeHandler(recipeService, authService, cfg.MaxUploadBytes)
	if deps.Redis != nil {
		recipeHandler.WithRateLimiters(
			middleware.NewRecipeCreateRateLimiter(deps.Redis, cfg.RecipeCreateLimit),
			middleware.NewImageUploadRateLimiter(deps.Redis, cfg.ImageUploadLimit),
		)
	}

	opts := router.Options{
		CORSOrigins: cfg.CORSOrigins,
		HealthCheck: func(ctx context.Context) error { return database.HealthCheck(ctx, deps.DB) },
	}
	if local, ok := deps.Blobs.(*storage.LocalStore); ok {
		opts.MediaURL = cfg.MediaURL
		opts.MediaRoot = local.Root()
	}

	engine := router.SetupRouter(router.Handlers{
		User:        api.NewUserHandler(authService),
		Tags:        api.NewTagHandler(service.NewTagService(deps.DB), authService),
		Ingredients: api.NewIngredientHandler(service.NewIngredientService(deps.DB), authService),
		Recipes:     recipeHandler,
	}, opts)

	return &Server{
		cfg:    cfg,
		router: engine,
		http: &http.Server{
			Addr:    cfg.Addr(),
			Handler: engine,
		},
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	logging.Info().Str("addr", s.http.Addr).Msg("starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, giving up after the configured timeout
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	return s.http.Shutdown(ctx)
}
