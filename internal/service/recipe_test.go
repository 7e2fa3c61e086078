package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/internal/mocks"
	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/service"
	"github.com/pageza/recipe-app/backend/internal/storage"
	"github.com/pageza/recipe-app/backend/internal/testhelpers"
	"github.com/pageza/recipe-app/backend/internal/types"
)

func setupRecipeTest(t *testing.T) (*gorm.DB, *service.RecipeService, *storage.LocalStore) {
	db := testhelpers.SetupTestDatabase(t)
	store, err := storage.NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)
	return db, service.NewRecipeService(db, store, 1<<20), store
}

func intPtr(i int) *int { return &i }

func numPtr(s string) *json.Number {
	n := json.Number(s)
	return &n
}

func TestCreateRecipeBasic(t *testing.T) {
	db, recipes, _ := setupRecipeTest(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "user@example.com")

	recipe, err := recipes.Create(ctx, user.ID, &types.RecipeRequest{
		Title:       strPtr("new recipe"),
		TimeMinutes: intPtr(3),
		Price:       numPtr("34.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new recipe", recipe.Title)
	assert.Equal(t, 3, recipe.TimeMinutes)
	assert.Equal(t, "34.00", recipe.Price.String())
	assert.Empty(t, recipe.Tags)
	assert.Empty(t, recipe.Ingredients)
	assert.Equal(t, user.ID, recipe.UserID)
}

func TestCreateRecipeWithRelations(t *testing.T) {
	db, recipes, _ := setupRecipeTest(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "user@example.com")
	vegan := testhelpers.CreateTestTag(t, db, user.ID, "Vegan")
	dessert := testhelpers.CreateTestTag(t, db, user.ID, "Dessert")
	prawns := testhelpers.CreateTestIngredient(t, db, user.ID, "Prawns")
	ginger := testhelpers.CreateTestIngredient(t, db, user.ID, "Ginger")

	recipe, err := recipes.Create(ctx, user.ID, &types.RecipeRequest{
		Title:       strPtr("Thai prawn red curry"),
		TimeMinutes: intPtr(20),
		Price:       numPtr("7.00"),
		Tags:        types.NewIDList(vegan.ID, dessert.ID),
		Ingredients: types.NewIDList(prawns.ID, ginger.ID),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{vegan.ID, dessert.ID}, recipe.TagIDs())
	assert.ElementsMatch(t, []uint{prawns.ID, ginger.ID}, recipe.IngredientIDs())
}

func TestCreateRecipeValidation(t *testing.T) {
	db, recipes, _ := setupRecipeTest(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "user@example.com")

	_, err := recipes.Create(ctx, user.ID, &types.RecipeRequest{})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "time_minutes")
	assert.Contains(t, verr.Fields, "price")

	cases := map[string]*types.RecipeRequest{
		"time_minutes": {Title: strPtr("t"), TimeMinutes: intPtr(0), Price: numPtr("1")},
		"price":        {Title: strPtr("t"), TimeMinutes: intPtr(1), Price: numPtr("1.234")},
		"link":         {Title: strPtr("t"), TimeMinutes: intPtr(1), Price: numPtr("1"), Link: strPtr("not a url")},
		"tags":         {Title: strPtr("t"), TimeMinutes: intPtr(1), Price: numPtr("1"), Tags: types.NewIDList(4242)},
		"ingredients":  {Title: strPtr("t"), TimeMinutes: intPtr(1), Price: numPtr("1"), Ingredients: types.IDList{Present: true, Null: true}},
	}
	for field, req := range cases {
		_, err := recipes.Create(ctx, user.ID, req)
		requireFieldError(t, err, field)
	}

	// the column is a 32-bit integer
	_, err = recipes.Create(ctx, user.ID, &types.RecipeRequest{
		Title: strPtr("t"), TimeMinutes: intPtr(math.MaxInt32 + 1), Price: numPtr("1"),
	})
	requireFieldError(t, err, "time_minutes")
	assert.Equal(t, []string{"Ensure this value is less than or equal to 2147483647."}, verrFields(t, err)["time_minutes"])

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRecipeAcceptsForeignLabels(t *testing.T) {
	db, recipes, _ := setupRecipeTest(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "user@example.com")
	other := testhelpers.CreateTestUser(t, db, "other@example.com")
	foreign := testhelpers.CreateTestTag(t, db, other.ID, "Theirs")

	recipe, err := recipes.Create(ctx, user.ID, &types.RecipeRequest{
		Title: strPtr("t"), TimeMinutes: intPtr(1), Price: numPtr("1"), Tags: types.NewIDList(foreign.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{foreign.ID}, recipe.TagIDs())
}

func TestPartialUpdateReplacesTags(t *testing.T) {
	db, recipes, _ := setupRecipeTest(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "user@example.com")
	oldTag := testhelpers.CreateTestTag(t, db, user.ID, "Thai")
	newTag := testhelpers.CreateTestTag(t, db, user.ID, "Curry")
	recipe := testhelpers.CreateTestRecipe(t, db, user.ID, []models.Tag{*oldTag}, nil)

	updated, err := recipes.Update(ctx, user.ID, recipe.ID, &types.RecipeRequest{
		Title: strPtr("Chicken tikka"),
		Tags:  types.NewIDList(newTag.ID),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "Chicken tikka", updated.Title)
	assert.Equal(t, []uint{newTag.ID}, updated.TagIDs())
	assert.Equal(t, recipe.TimeMinutes, updated.TimeMinutes)
	assert.Equal(t, recipe.Price.String(), updated.Price.String())
	assert.Equal(t, recipe.Link, updated.Link)
}

func TestPartialUpdateRejectsNullRelations(t *testing.T) {
	db, recipes, _ := setupRecipeTest(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "user@example.com")
	tag := testhelpers.CreateTestTag(t, db, user.ID, "Thai")
	recipe := testhelpers.CreateTestRecipe(t, db, user.ID, []models.Tag{*tag}, nil)

	_, err := recipes.Update(ctx, user.ID, recipe.ID, &types.RecipeRequest{
		Tags: types.IDList{Present: true, Null: true},
	}, false)
	requireFieldError(t, err, "tags")
	assert.Equal(t, []string{"This field may not be null."}, verrFields(t, err)["tags"])

	got, err := recipes.Get(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{tag.ID}, got.TagIDs())
}

func TestFullUpdateClearsOmittedRelations(t *testing.T) {
	db, recipes, _ := setupRecipeTest(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "user@example.com")
	tag := testhelpers.CreateTestTag(t, db, user.ID, "Dessert")
	ing := testhelpers.CreateTestIngredient(t, db, user.ID, "Sugar")
	recipe := testhelpers.CreateTestRecipe(t, db, user.ID, []models.Tag{*tag}, []models.Ingredient{*ing})

	updated, err := recipes.Update(ctx, user.ID, recipe.ID, &types.RecipeRequest{
		Title:       strPtr("Spaghetti carbonara"),
		TimeMinutes: intPtr(25),
		Price:       numPtr("5.00"),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "Spaghetti carbonara", updated.Title)
	assert.Equal(t, 25, updated.TimeMinutes)
	assert.Equal(t, "5.00", updated.Price.String())
	assert.Empty(t, updated.Link)
	assert.Empty(t, updated.Tags)
	assert.Empty(t, updated.Ingredients)

	_, err = recipes.Update(ctx, user.ID, recipe.ID, &types.RecipeRequest{Title: strPtr("x")}, true)
	requireFieldError(t, err, "price")
}

func TestRecipesAreOwnerScoped(t *testing.T) {
	db, recipes, _ := setupRecipeTest(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "user@example.com")
	other := testhelpers.CreateTestUser(t, db, "other@example.com")
	mine := testhelpers.CreateTestRecipe(t, db, user.ID, nil, nil)
	theirs := testhelpers.CreateTestRecipe(t, db, other.ID, nil, nil)

	list, err := recipes.List(ctx, user.ID, types.RecipeFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, err = recipes.Get(ctx, user.ID, theirs.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = recipes.Update(ctx, user.ID, theirs.ID, &types.RecipeRequest{Title: strPtr("x")}, false)
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.ErrorIs(t, recipes.Delete(ctx, user.ID, theirs.ID), service.ErrNotFound)
	_, err = recipes.Get(ctx, other.ID, theirs.ID)
	assert.NoError(t, err)
}

func TestDeleteRecipeRemovesImage(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	blobs := new(mocks.MockBlobStore)
	recipes := service.NewRecipeService(db, blobs, 1<<20)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "user@example.com")
	recipe := testhelpers.CreateTestRecipe(t, db, user.ID, nil, nil)
	require.NoError(t, db.Model(recipe).Update("image", "uploads/recipe/old.png").Error)

	blobs.On("Delete", mock.Anything, "uploads/recipe/old.png").Return(errors.New("storage down"))

	require.NoError(t, recipes.Delete(ctx, user.ID, recipe.ID), "blob errors do not fail the delete")
	blobs.AssertExpectations(t)

	_, err := recipes.Get(ctx, user.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
