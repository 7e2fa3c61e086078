package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-app/backend/internal/middleware"
	"github.com/pageza/recipe-app/backend/internal/service"
	"github.com/pageza/recipe-app/backend/internal/types"
)

// UserHandler serves account registration, token issuance and the caller's own profile
type UserHandler struct {
	authService service.IAuthService
}

func NewUserHandler(authService service.IAuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	user := router.Group("/user")
	{
		user.POST("/create", h.Register)
		user.POST("/token", h.IssueToken)
	}

	protected := user.Group("")
	protected.Use(middleware.AuthMiddleware(h.authService))
	{
		protected.GET("/me", h.GetMe)
		protected.PATCH("/me", h.PatchMe)
		protected.PUT("/me", h.PutMe)
		protected.POST("/logout", h.Logout)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, types.NewUserResponse(user))
}

func (h *UserHandler) IssueToken(c *gin.Context) {
	var req types.TokenRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	token, err := h.authService.IssueToken(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.TokenResponse{Token: token})
}

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.NewUserResponse(user))
}

func (h *UserHandler) PatchMe(c *gin.Context) { h.updateMe(c, false) }

func (h *UserHandler) PutMe(c *gin.Context) { h.updateMe(c, true) }

func (h *UserHandler) updateMe(c *gin.Context, full bool) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req types.UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	user, err := h.authService.UpdateUser(c.Request.Context(), userID, &req, full)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.NewUserResponse(user))
}

func (h *UserHandler) Logout(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
