package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/internal/logging"
	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/repository"
)

// MaxLabelNameLength bounds tag and ingredient names
const MaxLabelNameLength = 255

// LabelService manages one kind of per-user label
type LabelService[T models.Label] struct {
	repo *repository.LabelRepository[T]
	kind string
	newT func(userID uint, name string) T
}

func NewTagService(db *gorm.DB) *LabelService[models.Tag] {
	return &LabelService[models.Tag]{repo: repository.NewTagRepository(db), kind: "tag", newT: models.NewTag}
}

func NewIngredientService(db *gorm.DB) *LabelService[models.Ingredient] {
	return &LabelService[models.Ingredient]{repo: repository.NewIngredientRepository(db), kind: "ingredient", newT: models.NewIngredient}
}

// List returns the user's labels, optionally only those attached to one of the user's recipes
func (s *LabelService[T]) List(ctx context.Context, userID uint, assignedOnly bool) ([]T, error) {
	return s.repo.List(ctx, userID, assignedOnly)
}

// Create adds a label owned by userID. Duplicate names are allowed.
func (s *LabelService[T]) Create(ctx context.Context, userID uint, name string) (*T, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, NewValidationError("name", msgBlank)
	case utf8.RuneCountInString(name) > MaxLabelNameLength:
		return nil, NewValidationError("name", "Ensure this field has no more than 255 characters.")
	}

	label := s.newT(userID, name)
	if err := s.repo.Create(ctx, &label); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Debug().Str("kind", s.kind).Uint("id", label.LabelID()).Msg("label created")
	return &label, nil
}
