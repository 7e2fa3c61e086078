package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/recipe-app/backend/internal/api"
	"github.com/pageza/recipe-app/backend/internal/middleware"
	"github.com/pageza/recipe-app/backend/internal/models"
)

// Handlers groups the API handlers mounted by SetupRouter
type Handlers struct {
	User        *api.UserHandler
	Tags        *api.LabelHandler[models.Tag]
	Ingredients *api.LabelHandler[models.Ingredient]
	Recipes     *api.RecipeHandler
}

// Options configures the non-API routes and the middleware chain
type Options struct {
	CORSOrigins []string
	// MediaURL and MediaRoot serve locally stored uploads; empty MediaRoot disables it
	MediaURL  string
	MediaRoot string
	// HealthCheck is run by GET /health
	HealthCheck func(ctx context.Context) error
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	api.RegisterValidators()

	router := gin.New()
	router.Use(
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.Recovery(),
		middleware.ErrorHandler(),
		middleware.CORS(opts.CORSOrigins),
	)

	router.GET("/health", healthHandler(opts.HealthCheck))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.MediaRoot != "" && opts.MediaURL != "" {
		router.Static(opts.MediaURL, opts.MediaRoot)
	}

	root := router.Group("")
	h.User.RegisterRoutes(root)

	recipe := root.Group("/recipe")
	h.Tags.RegisterRoutes(recipe)
	h.Ingredients.RegisterRoutes(recipe)
	h.Recipes.RegisterRoutes(recipe)

	return router
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "unhealthy",
					"database": err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
