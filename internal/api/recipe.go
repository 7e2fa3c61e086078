package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-app/backend/internal/middleware"
	"github.com/pageza/recipe-app/backend/internal/service"
	"github.com/pageza/recipe-app/backend/internal/types"
)

// multipartOverhead is the slack allowed on top of the image size for form boundaries and headers
const multipartOverhead = 64 << 10

type RecipeHandler struct {
	recipeService  service.IRecipeService
	validator      middleware.TokenValidator
	maxUploadBytes int64
	createLimiter  *middleware.RateLimiter
	uploadLimiter  *middleware.RateLimiter
}

func NewRecipeHandler(recipeService service.IRecipeService, validator middleware.TokenValidator, maxUploadBytes int64) *RecipeHandler {
	return &RecipeHandler{
		recipeService:  recipeService,
		validator:      validator,
		maxUploadBytes: maxUploadBytes,
	}
}

// WithRateLimiters enables per-user limits on recipe creation and image upload. Either may be nil.
func (h *RecipeHandler) WithRateLimiters(create, upload *middleware.RateLimiter) *RecipeHandler {
	h.createLimiter = create
	h.uploadLimiter = upload
	return h
}

func limited(rl *middleware.RateLimiter, handler gin.HandlerFunc) []gin.HandlerFunc {
	if rl == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{rl.RateLimitMiddleware(), handler}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	recipes.Use(middleware.AuthMiddleware(h.validator))
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", limited(h.createLimiter, h.CreateRecipe)...)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", h.PutRecipe)
		recipes.PATCH("/:id", h.PatchRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/upload-image", limited(h.uploadLimiter, h.UploadImage)...)
	}
}

// ListRecipes returns the caller's recipes in summary form, filtered by the optional
// comma separated tags and ingredients query parameters
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}

	var filter types.RecipeFilter
	if filter.TagIDs, err = parseIDList(c, "tags"); err != nil {
		c.Error(err)
		return
	}
	if filter.IngredientIDs, err = parseIDList(c, "ingredients"); err != nil {
		c.Error(err)
		return
	}

	recipes, err := h.recipeService.List(c.Request.Context(), userID, filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeSummaries(recipes, h.recipeService.ImageURL))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, id, err := h.ids(c)
	if err != nil {
		c.Error(err)
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), userID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeDetail(recipe, h.recipeService.ImageURL))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req types.RecipeRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, types.NewRecipeDetail(recipe, h.recipeService.ImageURL))
}

func (h *RecipeHandler) PutRecipe(c *gin.Context) { h.updateRecipe(c, true) }

func (h *RecipeHandler) PatchRecipe(c *gin.Context) { h.updateRecipe(c, false) }

func (h *RecipeHandler) updateRecipe(c *gin.Context, full bool) {
	userID, id, err := h.ids(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req types.RecipeRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), userID, id, &req, full)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeDetail(recipe, h.recipeService.ImageURL))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, id, err := h.ids(c)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), userID, id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage attaches the multipart file field "image" to the recipe
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID, id, err := h.ids(c)
	if err != nil {
		c.Error(err)
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	filename, data, err := h.readImage(c)
	if err != nil {
		c.Error(err)
		return
	}

	recipe, err := h.recipeService.UploadImage(c.Request.Context(), userID, id, filename, data)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeImageResponse(recipe, h.recipeService.ImageURL))
}

func (h *RecipeHandler) readImage(c *gin.Context) (string, []byte, error) {
	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, h.tooLarge()
		}
		return "", nil, service.NewValidationError("image", "No file was submitted.")
	}

	f, err := header.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	reader := io.Reader(f)
	if h.maxUploadBytes > 0 {
		reader = io.LimitReader(f, h.maxUploadBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	if h.maxUploadBytes > 0 && int64(len(data)) > h.maxUploadBytes {
		return "", nil, h.tooLarge()
	}
	return header.Filename, data, nil
}

func (h *RecipeHandler) tooLarge() error {
	return service.NewValidationError("image", fmt.Sprintf("Ensure the file is no larger than %d bytes.", h.maxUploadBytes))
}

func (h *RecipeHandler) ids(c *gin.Context) (uint, uint, error) {
	userID, err := currentUser(c)
	if err != nil {
		return 0, 0, err
	}
	id, err := pathID(c)
	if err != nil {
		return 0, 0, err
	}
	return userID, id, nil
}
