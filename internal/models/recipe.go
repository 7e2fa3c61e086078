package models

import (
	"time"
)

// Tag is a user-owned label attachable to recipes
type Tag struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:255;not null" json:"name"`
	UserID uint   `gorm:"not null;index" json:"-"`
	User   User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Ingredient is a user-owned label attachable to recipes, independent of tags
type Ingredient struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:255;not null" json:"name"`
	UserID uint   `gorm:"not null;index" json:"-"`
	User   User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Label is the constraint shared by the two per-user label kinds
type Label interface {
	Tag | Ingredient
	LabelID() uint
	LabelName() string
}

func NewTag(userID uint, name string) Tag { return Tag{Name: name, UserID: userID} }

func (t Tag) LabelID() uint     { return t.ID }
func (t Tag) LabelName() string { return t.Name }

func NewIngredient(userID uint, name string) Ingredient {
	return Ingredient{Name: name, UserID: userID}
}

func (i Ingredient) LabelID() uint     { return i.ID }
func (i Ingredient) LabelName() string { return i.Name }

// Recipe join tables
const (
	RecipeTagsTable        = "recipe_tags"
	RecipeIngredientsTable = "recipe_ingredients"
)

// Recipe is a user-owned recipe with its tag and ingredient sets and optional image
type Recipe struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	UserID      uint         `gorm:"not null;index" json:"-"`
	User        User         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	TimeMinutes int          `gorm:"not null" json:"time_minutes"`
	Price       Price        `gorm:"type:numeric(7,2);not null" json:"price"`
	Link        string       `gorm:"size:255;not null;default:''" json:"link"`
	Image       string       `gorm:"size:255;not null;default:''" json:"image"`
	Tags        []Tag        `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []Ingredient `gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE" json:"ingredients"`
}

// TagIDs returns the ids of the recipe's tags in their loaded order
func (r *Recipe) TagIDs() []uint {
	ids := make([]uint, len(r.Tags))
	for i, t := range r.Tags {
		ids[i] = t.ID
	}
	return ids
}

// IngredientIDs returns the ids of the recipe's ingredients in their loaded order
func (r *Recipe) IngredientIDs() []uint {
	ids := make([]uint, len(r.Ingredients))
	for i, in := range r.Ingredients {
		ids[i] = in.ID
	}
	return ids
}

// AllModels lists every table-backed model, in dependency order, for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&AuthToken{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
	}
}
