package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/internal/models"
)

// LabelRepository stores one label kind. joinTable and joinColumn name the recipe
// relation the label appears in, used by the assigned-only filter.
type LabelRepository[T models.Label] struct {
	db         *gorm.DB
	joinTable  string
	joinColumn string
}

func NewTagRepository(db *gorm.DB) *LabelRepository[models.Tag] {
	return &LabelRepository[models.Tag]{db: db, joinTable: models.RecipeTagsTable, joinColumn: "tag_id"}
}

func NewIngredientRepository(db *gorm.DB) *LabelRepository[models.Ingredient] {
	return &LabelRepository[models.Ingredient]{db: db, joinTable: models.RecipeIngredientsTable, joinColumn: "ingredient_id"}
}

// List returns the user's labels ordered by name then id, both descending.
// With assignedOnly, only labels attached to at least one of the user's recipes are returned.
func (r *LabelRepository[T]) List(ctx context.Context, userID uint, assignedOnly bool) ([]T, error) {
	q := r.db.WithContext(ctx).Model(new(T)).Where("user_id = ?", userID)
	if assignedOnly {
		sub := r.db.Table(r.joinTable+" AS jt").
			Select("jt."+r.joinColumn).
			Joins("JOIN recipes r ON r.id = jt.recipe_id").
			Where("r.user_id = ?", userID)
		q = q.Where("id IN (?)", sub)
	}

	var out []T
	if err := q.Order("name DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return out, nil
}

func (r *LabelRepository[T]) Create(ctx context.Context, label *T) error {
	if err := r.db.WithContext(ctx).Create(label).Error; err != nil {
		return fmt.Errorf("create label: %w", err)
	}
	return nil
}

// FindByIDs returns the labels with the given ids regardless of owner, ordered by id
func (r *LabelRepository[T]) FindByIDs(ctx context.Context, ids []uint) ([]T, error) {
	var out []T
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("find labels: %w", err)
	}
	return out, nil
}
