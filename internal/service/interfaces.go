package service

import (
	"context"

	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/types"
)

// IAuthService defines the interface for account and token operations
type IAuthService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	IssueToken(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	UpdateUser(ctx context.Context, userID uint, req *types.UpdateUserRequest, full bool) (*models.User, error)
	Logout(ctx context.Context, userID uint) error
}

// ILabelService defines the interface for tag and ingredient operations
type ILabelService[T models.Label] interface {
	List(ctx context.Context, userID uint, assignedOnly bool) ([]T, error)
	Create(ctx context.Context, userID uint, name string) (*T, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	List(ctx context.Context, userID uint, filter types.RecipeFilter) ([]models.Recipe, error)
	Get(ctx context.Context, userID, id uint) (*models.Recipe, error)
	Create(ctx context.Context, userID uint, req *types.RecipeRequest) (*models.Recipe, error)
	Update(ctx context.Context, userID, id uint, req *types.RecipeRequest, full bool) (*models.Recipe, error)
	Delete(ctx context.Context, userID, id uint) error
	UploadImage(ctx context.Context, userID, id uint, filename string, data []byte) (*models.Recipe, error)
	ImageURL(key string) string
}

var (
	_ IAuthService                     = (*AuthService)(nil)
	_ ILabelService[models.Tag]        = (*LabelService[models.Tag])(nil)
	_ ILabelService[models.Ingredient] = (*LabelService[models.Ingredient])(nil)
	_ IRecipeService                   = (*RecipeService)(nil)
)
