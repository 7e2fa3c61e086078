package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-app/backend/internal/middleware"
	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/service"
	"github.com/pageza/recipe-app/backend/internal/types"
)

// LabelHandler serves list and create for one label kind under /recipe
type LabelHandler[T models.Label] struct {
	path      string
	service   service.ILabelService[T]
	validator middleware.TokenValidator
}

// NewTagHandler serves /recipe/tags
func NewTagHandler(svc service.ILabelService[models.Tag], validator middleware.TokenValidator) *LabelHandler[models.Tag] {
	return &LabelHandler[models.Tag]{path: "/tags", service: svc, validator: validator}
}

// NewIngredientHandler serves /recipe/ingredients
func NewIngredientHandler(svc service.ILabelService[models.Ingredient], validator middleware.TokenValidator) *LabelHandler[models.Ingredient] {
	return &LabelHandler[models.Ingredient]{path: "/ingredients", service: svc, validator: validator}
}

func (h *LabelHandler[T]) RegisterRoutes(router *gin.RouterGroup) {
	labels := router.Group(h.path)
	labels.Use(middleware.AuthMiddleware(h.validator))
	{
		labels.GET("", h.List)
		labels.POST("", h.Create)
	}
}

// List returns the caller's labels, optionally only those attached to one of their recipes
func (h *LabelHandler[T]) List(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}
	assignedOnly, err := parseFlag(c, "assigned_only")
	if err != nil {
		c.Error(err)
		return
	}

	labels, err := h.service.List(c.Request.Context(), userID, assignedOnly)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.NewLabelResponses(labels))
}

func (h *LabelHandler[T]) Create(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req types.LabelRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	label, err := h.service.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, types.NewLabelResponse(*label))
}
