package types

import (
	"github.com/pageza/recipe-app/backend/internal/models"
)

// UserResponse is the public view of an account
type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenResponse is returned by POST /user/token
type TokenResponse struct {
	Token string `json:"token"`
}

// LabelResponse is the view of a tag or an ingredient
type LabelResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RecipeSummary is the list view of a recipe: relations as id arrays
type RecipeSummary struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	TimeMinutes int    `json:"time_minutes"`
	Price       string `json:"price"`
	Link        string `json:"link"`
	Image       string `json:"image"`
	Tags        []uint `json:"tags"`
	Ingredients []uint `json:"ingredients"`
}

// RecipeDetail is the detail view of a recipe: relations as nested objects
type RecipeDetail struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       string          `json:"price"`
	Link        string          `json:"link"`
	Image       string          `json:"image"`
	Tags        []LabelResponse `json:"tags"`
	Ingredients []LabelResponse `json:"ingredients"`
}

// RecipeImageResponse is returned by the upload-image endpoint
type RecipeImageResponse struct {
	ID    uint   `json:"id"`
	Image string `json:"image"`
}

// ImageURLFunc resolves a stored blob key to a public URL
type ImageURLFunc func(key string) string

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func NewLabelResponse[T models.Label](l T) LabelResponse {
	return LabelResponse{ID: l.LabelID(), Name: l.LabelName()}
}

func NewLabelResponses[T models.Label](labels []T) []LabelResponse {
	out := make([]LabelResponse, len(labels))
	for i, l := range labels {
		out[i] = NewLabelResponse(l)
	}
	return out
}

func imageURL(key string, resolve ImageURLFunc) string {
	if key == "" || resolve == nil {
		return ""
	}
	return resolve(key)
}

// NewRecipeSummary renders the summary shape
func NewRecipeSummary(r *models.Recipe, resolve ImageURLFunc) RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.String(),
		Link:        r.Link,
		Image:       imageURL(r.Image, resolve),
		Tags:        r.TagIDs(),
		Ingredients: r.IngredientIDs(),
	}
}

func NewRecipeSummaries(recipes []models.Recipe, resolve ImageURLFunc) []RecipeSummary {
	out := make([]RecipeSummary, len(recipes))
	for i := range recipes {
		out[i] = NewRecipeSummary(&recipes[i], resolve)
	}
	return out
}

// NewRecipeDetail renders the detail shape
func NewRecipeDetail(r *models.Recipe, resolve ImageURLFunc) RecipeDetail {
	return RecipeDetail{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.String(),
		Link:        r.Link,
		Image:       imageURL(r.Image, resolve),
		Tags:        NewLabelResponses(r.Tags),
		Ingredients: NewLabelResponses(r.Ingredients),
	}
}

func NewRecipeImageResponse(r *models.Recipe, resolve ImageURLFunc) RecipeImageResponse {
	return RecipeImageResponse{ID: r.ID, Image: imageURL(r.Image, resolve)}
}
