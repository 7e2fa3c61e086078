package types

import (
	"encoding/json"
)

// RegisterRequest represents the request body for creating a user
type RegisterRequest struct {
	Email    string `json:"email" binding:"max=255"`
	Password string `json:"password" binding:"max=128"`
	Name     string `json:"name" binding:"max=255"`
}

// TokenRequest represents the request body for issuing a token
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest represents the body of PATCH and PUT /user/me.
// Nil fields were not supplied.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,max=255"`
	Password *string `json:"password" binding:"omitempty,max=128"`
	Name     *string `json:"name" binding:"omitempty,max=255"`
}

// LabelRequest represents the request body for creating a tag or an ingredient
type LabelRequest struct {
	Name string `json:"name" binding:"max=255"`
}

// RecipeRequest represents the body of recipe create, PATCH and PUT.
// Nil fields were not supplied; an empty tags array is distinct from a missing one.
type RecipeRequest struct {
	Title       *string      `json:"title" binding:"omitempty,max=255"`
	TimeMinutes *int         `json:"time_minutes"`
	Price       *json.Number `json:"price" binding:"omitempty,price"`
	Link        *string      `json:"link" binding:"omitempty,url,max=255"`
	Tags        IDList       `json:"tags"`
	Ingredients IDList       `json:"ingredients"`
}

// IDList is a relation id list in a request body. Present is set when the key appears,
// Null when its value is JSON null.
type IDList struct {
	IDs     []uint
	Present bool
	Null    bool
}

// NewIDList is a supplied list holding ids
func NewIDList(ids ...uint) IDList {
	if ids == nil {
		ids = []uint{}
	}
	return IDList{IDs: ids, Present: true}
}

func (l *IDList) UnmarshalJSON(data []byte) error {
	l.Present = true
	if string(data) == "null" {
		l.Null, l.IDs = true, nil
		return nil
	}
	return json.Unmarshal(data, &l.IDs)
}

// RecipeFilter narrows a recipe listing. Empty slices mean no filter.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}
