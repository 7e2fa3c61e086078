package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/types"
)

type RecipeRepository struct{ db *gorm.DB }

func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

func preloadRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

// List returns the user's recipes ordered by id. Each non-empty filter keeps recipes
// related to any of its ids; two filters must both match.
func (r *RecipeRepository) List(ctx context.Context, userID uint, filter types.RecipeFilter) ([]models.Recipe, error) {
	q := r.db.WithContext(ctx).Where("recipes.user_id = ?", userID)
	if len(filter.TagIDs) > 0 {
		q = q.Where("recipes.id IN (?)",
			r.db.Table(models.RecipeTagsTable).Select("recipe_id").Where("tag_id IN ?", filter.TagIDs))
	}
	if len(filter.IngredientIDs) > 0 {
		q = q.Where("recipes.id IN (?)",
			r.db.Table(models.RecipeIngredientsTable).Select("recipe_id").Where("ingredient_id IN ?", filter.IngredientIDs))
	}

	var recipes []models.Recipe
	if err := preloadRelations(q).Order("recipes.id").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// Get returns the user's recipe with its relations, or gorm.ErrRecordNotFound
func (r *RecipeRepository) Get(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	return r.get(r.db.WithContext(ctx), userID, id)
}

func (r *RecipeRepository) get(db *gorm.DB, userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadRelations(db).Where("id = ? AND user_id = ?", id, userID).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Create inserts the recipe and its relation rows in one transaction and reloads it
func (r *RecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Tags.*", "Ingredients.*").Create(recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		saved, err := r.get(tx, recipe.UserID, recipe.ID)
		if err != nil {
			return fmt.Errorf("reload recipe: %w", err)
		}
		*recipe = *saved
		return nil
	})
}

// Update writes the scalar columns and, when asked, replaces a relation set with the
// one held on recipe. Scalars and relations change in the same transaction.
func (r *RecipeRepository) Update(ctx context.Context, recipe *models.Recipe, replaceTags, replaceIngredients bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).
			Where("id = ? AND user_id = ?", recipe.ID, recipe.UserID).
			Select("title", "time_minutes", "price", "link", "updated_at").
			Updates(recipe)
		if res.Error != nil {
			return fmt.Errorf("update recipe: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if replaceTags {
			if err := replaceAssociation(tx, recipe, "Tags", recipe.Tags); err != nil {
				return err
			}
		}
		if replaceIngredients {
			if err := replaceAssociation(tx, recipe, "Ingredients", recipe.Ingredients); err != nil {
				return err
			}
		}

		saved, err := r.get(tx, recipe.UserID, recipe.ID)
		if err != nil {
			return fmt.Errorf("reload recipe: %w", err)
		}
		*recipe = *saved
		return nil
	})
}

func replaceAssociation[T models.Label](tx *gorm.DB, recipe *models.Recipe, name string, values []T) error {
	assoc := tx.Model(recipe).Omit(name + ".*").Association(name)
	var err error
	if len(values) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(values)
	}
	if err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// Delete removes the recipe and its relation rows
func (r *RecipeRepository) Delete(ctx context.Context, recipe *models.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		if err := tx.Model(recipe).Association("Ingredients").Clear(); err != nil {
			return fmt.Errorf("clear ingredients: %w", err)
		}
		res := tx.Where("user_id = ?", recipe.UserID).Delete(&models.Recipe{}, recipe.ID)
		if res.Error != nil {
			return fmt.Errorf("delete recipe: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// SetImage points the user's recipe at key and returns the key it replaced.
// The row is locked for the swap so concurrent uploads each see the key they overwrite.
func (r *RecipeRepository) SetImage(ctx context.Context, userID, id uint, key string) (string, error) {
	var previous string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Recipe
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "image").
			Where("id = ? AND user_id = ?", id, userID).
			Take(&current).Error; err != nil {
			return err
		}
		if err := tx.Model(&current).Update("image", key).Error; err != nil {
			return fmt.Errorf("set recipe image: %w", err)
		}
		previous = current.Image
		return nil
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}
