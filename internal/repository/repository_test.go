package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/testhelpers"
	"github.com/pageza/recipe-app/backend/internal/types"
)

func labelNames[T models.Label](labels []T) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.LabelName()
	}
	return names
}

func recipeIDs(recipes []models.Recipe) []uint {
	ids := make([]uint, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}
	return ids
}

func TestUserRepository(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "user@example.com", Name: "User", PasswordHash: "x", IsActive: true}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	got, err := repo.GetByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetByID(ctx, user.ID+100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	taken, err := repo.EmailTaken(ctx, "user@example.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.EmailTaken(ctx, "user@example.com", user.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	err = repo.Create(ctx, &models.User{Email: "user@example.com", Name: "Dup", PasswordHash: "x"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestTokenRepositoryGetOrCreate(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "token@example.com")

	first, err := repo.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Key)

	second, err := repo.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Key, second.Key)

	byKey, err := repo.GetByKey(ctx, first.Key)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byKey.UserID)

	require.NoError(t, repo.DeleteByUser(ctx, user.ID))
	_, err = repo.GetByKey(ctx, first.Key)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLabelRepositoryListOrderingAndScope(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "one@example.com")
	other := testhelpers.CreateTestUser(t, db, "two@example.com")
	testhelpers.CreateTestTag(t, db, user.ID, "Dessert")
	testhelpers.CreateTestTag(t, db, user.ID, "Vegan")
	testhelpers.CreateTestTag(t, db, other.ID, "Fruity")

	tags, err := repo.List(ctx, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Vegan", "Dessert"}, labelNames(tags))
}

func TestLabelRepositoryAssignedOnly(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "one@example.com")
	apples := testhelpers.CreateTestIngredient(t, db, user.ID, "Apples")
	testhelpers.CreateTestIngredient(t, db, user.ID, "Turkey")
	testhelpers.CreateTestRecipe(t, db, user.ID, nil, []models.Ingredient{*apples})
	testhelpers.CreateTestRecipe(t, db, user.ID, nil, []models.Ingredient{*apples})

	ings, err := repo.List(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, ings, 1, "assigned labels are returned once")
	assert.Equal(t, apples.ID, ings[0].ID)
}

func TestLabelRepositoryFindByIDs(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := NewTagRepository(db)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "one@example.com")
	a := testhelpers.CreateTestTag(t, db, user.ID, "a")
	b := testhelpers.CreateTestTag(t, db, user.ID, "b")

	found, err := repo.FindByIDs(ctx, []uint{b.ID, a.ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, labelNames(found))

	created := models.NewTag(user.ID, "c")
	require.NoError(t, repo.Create(ctx, &created))
	assert.NotZero(t, created.ID)
}

func TestRecipeRepositoryFilters(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "one@example.com")
	other := testhelpers.CreateTestUser(t, db, "two@example.com")
	vegan := testhelpers.CreateTestTag(t, db, user.ID, "Vegan")
	veggie := testhelpers.CreateTestTag(t, db, user.ID, "Vegetarian")
	feta := testhelpers.CreateTestIngredient(t, db, user.ID, "Feta")

	r1 := testhelpers.CreateTestRecipe(t, db, user.ID, []models.Tag{*vegan}, nil)
	r2 := testhelpers.CreateTestRecipe(t, db, user.ID, []models.Tag{*veggie}, []models.Ingredient{*feta})
	r3 := testhelpers.CreateTestRecipe(t, db, user.ID, nil, nil)
	testhelpers.CreateTestRecipe(t, db, other.ID, []models.Tag{*vegan}, nil)

	all, err := repo.List(ctx, user.ID, types.RecipeFilter{})
	require.NoError(t, err)
	assert.Equal(t, []uint{r1.ID, r2.ID, r3.ID}, recipeIDs(all))

	byTag, err := repo.List(ctx, user.ID, types.RecipeFilter{TagIDs: []uint{vegan.ID, veggie.ID}})
	require.NoError(t, err)
	assert.Equal(t, []uint{r1.ID, r2.ID}, recipeIDs(byTag))

	both, err := repo.List(ctx, user.ID, types.RecipeFilter{
		TagIDs:        []uint{vegan.ID, veggie.ID},
		IngredientIDs: []uint{feta.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{r2.ID}, recipeIDs(both))
	assert.Len(t, both[0].Tags, 1)
	assert.Len(t, both[0].Ingredients, 1)
}

func TestRecipeRepositoryGetIsOwnerScoped(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "one@example.com")
	other := testhelpers.CreateTestUser(t, db, "two@example.com")
	recipe := testhelpers.CreateTestRecipe(t, db, user.ID, nil, nil)

	_, err := repo.Get(ctx, other.ID, recipe.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.Get(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.25", got.Price.String())
}

func TestRecipeRepositoryCreateUpdateDelete(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "one@example.com")
	t1 := testhelpers.CreateTestTag(t, db, user.ID, "t1")
	t2 := testhelpers.CreateTestTag(t, db, user.ID, "t2")
	i1 := testhelpers.CreateTestIngredient(t, db, user.ID, "i1")

	recipe := &models.Recipe{
		UserID:      user.ID,
		Title:       "Soup",
		TimeMinutes: 5,
		Price:       models.MustPrice("3.10"),
		Tags:        []models.Tag{*t1},
		Ingredients: []models.Ingredient{*i1},
	}
	require.NoError(t, repo.Create(ctx, recipe))
	assert.Equal(t, []uint{t1.ID}, recipe.TagIDs())

	recipe.Title = "Stew"
	recipe.Tags = []models.Tag{*t2}
	require.NoError(t, repo.Update(ctx, recipe, true, false))
	assert.Equal(t, "Stew", recipe.Title)
	assert.Equal(t, []uint{t2.ID}, recipe.TagIDs())
	assert.Equal(t, []uint{i1.ID}, recipe.IngredientIDs())

	recipe.Ingredients = nil
	require.NoError(t, repo.Update(ctx, recipe, false, true))
	assert.Empty(t, recipe.Ingredients)

	previous, err := repo.SetImage(ctx, user.ID, recipe.ID, "uploads/recipe/x.png")
	require.NoError(t, err)
	assert.Empty(t, previous)
	got, err := repo.Get(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/recipe/x.png", got.Image)

	require.NoError(t, repo.Delete(ctx, got))
	_, err = repo.Get(ctx, user.ID, recipe.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var joinRows int64
	require.NoError(t, db.Table(models.RecipeTagsTable).Where("recipe_id = ?", recipe.ID).Count(&joinRows).Error)
	assert.Zero(t, joinRows)

	_, err = repo.SetImage(ctx, user.ID, recipe.ID, "k")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRecipeRepositorySetImageReturnsReplacedKey(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "one@example.com")
	other := testhelpers.CreateTestUser(t, db, "two@example.com")
	recipe := testhelpers.CreateTestRecipe(t, db, user.ID, nil, nil)

	first, err := repo.SetImage(ctx, user.ID, recipe.ID, "uploads/recipe/a.png")
	require.NoError(t, err)
	assert.Empty(t, first)

	// a writer that lost the race still learns which key it overwrote
	require.NoError(t, db.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Update("image", "uploads/recipe/b.png").Error)
	replaced, err := repo.SetImage(ctx, user.ID, recipe.ID, "uploads/recipe/c.png")
	require.NoError(t, err)
	assert.Equal(t, "uploads/recipe/b.png", replaced)

	_, err = repo.SetImage(ctx, other.ID, recipe.ID, "uploads/recipe/d.png")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.Get(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/recipe/c.png", got.Image)
}

func TestRecipeRepositoryPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	db := testhelpers.SetupPostgresDatabase(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "pg@example.com")
	tag := testhelpers.CreateTestTag(t, db, user.ID, "pg")

	recipe := &models.Recipe{
		UserID:      user.ID,
		Title:       "Postgres soup",
		TimeMinutes: 3,
		Price:       models.MustPrice("34.00"),
		Tags:        []models.Tag{*tag},
	}
	require.NoError(t, repo.Create(ctx, recipe))

	got, err := repo.List(ctx, user.ID, types.RecipeFilter{TagIDs: []uint{tag.ID}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "34.00", got[0].Price.String())
}
