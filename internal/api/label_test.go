package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/testhelpers"
	"github.com/pageza/recipe-app/backend/internal/types"
)

func labelNames(labels []types.LabelResponse) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}

func TestLabelsRequireAuth(t *testing.T) {
	env := setupTestEnv(t)
	for _, path := range []string{"/recipe/tags", "/recipe/ingredients"} {
		w := env.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestListTagsOwnOnly(t *testing.T) {
	env := setupTestEnv(t)
	user, token := env.login(t, "user@example.com")
	other := testhelpers.CreateTestUser(t, env.db, "other@example.com")

	testhelpers.CreateTestTag(t, env.db, user.ID, "Dessert")
	testhelpers.CreateTestTag(t, env.db, user.ID, "Vegan")
	testhelpers.CreateTestTag(t, env.db, other.ID, "Fruity")

	w := env.do(t, http.MethodGet, "/recipe/tags", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Vegan", "Dessert"}, labelNames(decode[[]types.LabelResponse](t, w)))
}

func TestCreateLabels(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.login(t, "user@example.com")

	w := env.do(t, http.MethodPost, "/recipe/tags", gin.H{"name": "Breakfast"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tag := decode[types.LabelResponse](t, w)
	assert.Equal(t, "Breakfast", tag.Name)
	assert.NotZero(t, tag.ID)

	w = env.do(t, http.MethodPost, "/recipe/ingredients", gin.H{"name": "Cabbage"}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/recipe/ingredients", gin.H{"name": ""}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Fields, "name")
}

func TestListIngredientsAssignedOnly(t *testing.T) {
	env := setupTestEnv(t)
	user, token := env.login(t, "user@example.com")

	apples := testhelpers.CreateTestIngredient(t, env.db, user.ID, "Apples")
	testhelpers.CreateTestIngredient(t, env.db, user.ID, "Turkey")
	testhelpers.CreateTestRecipe(t, env.db, user.ID, nil, []models.Ingredient{*apples})
	testhelpers.CreateTestRecipe(t, env.db, user.ID, nil, []models.Ingredient{*apples})

	w := env.do(t, http.MethodGet, "/recipe/ingredients?assigned_only=1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []types.LabelResponse{{ID: apples.ID, Name: "Apples"}}, decode[[]types.LabelResponse](t, w))

	w = env.do(t, http.MethodGet, "/recipe/ingredients?assigned_only=0", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.LabelResponse](t, w), 2)

	w = env.do(t, http.MethodGet, "/recipe/ingredients?assigned_only=maybe", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
