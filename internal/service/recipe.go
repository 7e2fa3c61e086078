package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/internal/logging"
	"github.com/pageza/recipe-app/backend/internal/metrics"
	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/repository"
	"github.com/pageza/recipe-app/backend/internal/storage"
	"github.com/pageza/recipe-app/backend/internal/types"
)

// RecipeService owns recipes, their tag and ingredient sets and their images
type RecipeService struct {
	recipes        *repository.RecipeRepository
	tags           *repository.LabelRepository[models.Tag]
	ingredients    *repository.LabelRepository[models.Ingredient]
	blobs          storage.BlobStore
	maxUploadBytes int64
	maxImagePixels int64
}

// DefaultMaxImagePixels bounds the decoded size of an uploaded image
const DefaultMaxImagePixels int64 = 40_000_000

func NewRecipeService(db *gorm.DB, blobs storage.BlobStore, maxUploadBytes int64) *RecipeService {
	return &RecipeService{
		recipes:        repository.NewRecipeRepository(db),
		tags:           repository.NewTagRepository(db),
		ingredients:    repository.NewIngredientRepository(db),
		blobs:          blobs,
		maxUploadBytes: maxUploadBytes,
		maxImagePixels: DefaultMaxImagePixels,
	}
}

// WithMaxImagePixels sets the largest width*height accepted for uploads.
// Non-positive values keep the default.
func (s *RecipeService) WithMaxImagePixels(n int64) *RecipeService {
	if n > 0 {
		s.maxImagePixels = n
	}
	return s
}

// ImageURL resolves a stored image key to its public URL
func (s *RecipeService) ImageURL(key string) string {
	return s.blobs.URL(key)
}

func (s *RecipeService) List(ctx context.Context, userID uint, filter types.RecipeFilter) ([]models.Recipe, error) {
	return s.recipes.List(ctx, userID, filter)
}

func (s *RecipeService) Get(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	recipe, err := s.recipes.Get(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return recipe, nil
}

// Create validates req and stores a recipe owned by userID with the given relations
func (s *RecipeService) Create(ctx context.Context, userID uint, req *types.RecipeRequest) (*models.Recipe, error) {
	recipe := &models.Recipe{UserID: userID}
	if _, _, err := s.apply(ctx, recipe, req, true); err != nil {
		return nil, err
	}
	if err := s.recipes.Create(ctx, recipe); err != nil {
		return nil, err
	}

	metrics.RecipesCreated.Inc()
	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Uint("user_id", userID).Msg("recipe created")
	return recipe, nil
}

// Update changes the user's recipe. Partial updates touch only supplied fields and
// replace a relation set only when it is supplied; full updates reset omitted link and relations.
func (s *RecipeService) Update(ctx context.Context, userID, id uint, req *types.RecipeRequest, full bool) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	replaceTags, replaceIngredients, err := s.apply(ctx, recipe, req, full)
	if err != nil {
		return nil, err
	}
	if err := s.recipes.Update(ctx, recipe, replaceTags, replaceIngredients); err != nil {
		return nil, notFound(err)
	}
	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Bool("full", full).Msg("recipe updated")
	return recipe, nil
}

// Delete removes the user's recipe and then its stored image
func (s *RecipeService) Delete(ctx context.Context, userID, id uint) error {
	recipe, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, recipe); err != nil {
		return notFound(err)
	}
	metrics.RecipesDeleted.Inc()

	if recipe.Image != "" {
		s.deleteBlob(ctx, recipe.Image)
	}
	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Msg("recipe deleted")
	return nil
}

func (s *RecipeService) deleteBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		metrics.BlobDeleteErrors.Inc()
		logging.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to delete blob")
	}
}

// apply copies req onto recipe. With full set, title, time_minutes and price are required
// and omitted link and relations are cleared.
func (s *RecipeService) apply(ctx context.Context, recipe *models.Recipe, req *types.RecipeRequest, full bool) (replaceTags, replaceIngredients bool, err error) {
	verr := &ValidationError{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			verr.Add("title", msgBlank)
		}
		recipe.Title = title
	} else if full {
		verr.Add("title", msgRequired)
	}

	if req.TimeMinutes != nil {
		switch {
		case *req.TimeMinutes < 1:
			verr.Add("time_minutes", "Ensure this value is greater than or equal to 1.")
		case *req.TimeMinutes > math.MaxInt32:
			verr.Add("time_minutes", fmt.Sprintf("Ensure this value is less than or equal to %d.", math.MaxInt32))
		}
		recipe.TimeMinutes = *req.TimeMinutes
	} else if full {
		verr.Add("time_minutes", msgRequired)
	}

	if req.Price != nil {
		price, perr := models.ParsePrice(req.Price.String())
		if perr != nil {
			verr.Add("price", capitalize(perr.Error()))
		}
		recipe.Price = price
	} else if full {
		verr.Add("price", msgRequired)
	}

	if req.Link != nil {
		link := strings.TrimSpace(*req.Link)
		if link != "" && validate.Var(link, "url") != nil {
			verr.Add("link", "Enter a valid URL.")
		}
		recipe.Link = link
	} else if full {
		recipe.Link = ""
	}

	if req.Tags.Null {
		verr.Add("tags", msgNull)
	} else if req.Tags.Present {
		if recipe.Tags, err = resolveLabels(ctx, s.tags, "tags", req.Tags.IDs, verr); err != nil {
			return false, false, err
		}
		replaceTags = true
	} else if full {
		recipe.Tags = nil
		replaceTags = true
	}

	if req.Ingredients.Null {
		verr.Add("ingredients", msgNull)
	} else if req.Ingredients.Present {
		if recipe.Ingredients, err = resolveLabels(ctx, s.ingredients, "ingredients", req.Ingredients.IDs, verr); err != nil {
			return false, false, err
		}
		replaceIngredients = true
	} else if full {
		recipe.Ingredients = nil
		replaceIngredients = true
	}

	if verr.HasErrors() {
		return false, false, verr
	}
	return replaceTags, replaceIngredients, nil
}

// resolveLabels loads the labels for ids. Any id without a row is a validation error
// on field. Ownership of the labels is not checked.
func resolveLabels[T models.Label](ctx context.Context, repo *repository.LabelRepository[T], field string, ids []uint, verr *ValidationError) ([]T, error) {
	seen := make(map[uint]bool, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	found, err := repo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(found) == len(unique) {
		return found, nil
	}

	exists := make(map[uint]bool, len(found))
	for _, l := range found {
		exists[l.LabelID()] = true
	}
	for _, id := range unique {
		if !exists[id] {
			verr.Add(field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
	}
	return found, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
