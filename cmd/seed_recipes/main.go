package main

import (
	"context"
	"encoding/json"
	"flag"

	"github.com/pageza/recipe-app/backend/config"
	"github.com/pageza/recipe-app/backend/internal/database"
	"github.com/pageza/recipe-app/backend/internal/logging"
	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/repository"
	"github.com/pageza/recipe-app/backend/internal/service"
	"github.com/pageza/recipe-app/backend/internal/storage"
	"github.com/pageza/recipe-app/backend/internal/types"
)

type RecipeData struct {
	Title       string
	TimeMinutes int
	Price       string
	Link        string
	Tags        []string
	Ingredients []string
}

var seedRecipes = []RecipeData{
	{Title: "Thai prawn red curry", TimeMinutes: 20, Price: "7.00", Tags: []string{"Thai", "Dinner"}, Ingredients: []string{"Prawns", "Ginger", "Coconut milk"}},
	{Title: "Aubergine with tahini", TimeMinutes: 25, Price: "4.50", Tags: []string{"Vegan", "Dinner"}, Ingredients: []string{"Aubergine", "Tahini", "Lemon"}},
	{Title: "Fish and chips", TimeMinutes: 40, Price: "8.25", Tags: []string{"Dinner"}, Ingredients: []string{"Cod", "Potatoes", "Flour"}},
	{Title: "Porridge with berries", TimeMinutes: 10, Price: "2.00", Tags: []string{"Breakfast", "Vegetarian"}, Ingredients: []string{"Oats", "Milk", "Blueberries"}},
	{Title: "Greek salad", TimeMinutes: 15, Price: "5.25", Tags: []string{"Vegetarian", "Lunch"}, Ingredients: []string{"Feta", "Cucumber", "Tomato", "Olives"}},
	{Title: "Spaghetti carbonara", TimeMinutes: 25, Price: "5.00", Link: "https://example.com/carbonara", Tags: []string{"Dinner"}, Ingredients: []string{"Spaghetti", "Eggs", "Pancetta"}},
}

// labelIDs returns the ids for names, creating the labels the user does not have yet
func labelIDs[T models.Label](ctx context.Context, svc *service.LabelService[T], userID uint, existing map[string]uint, names []string) ([]uint, error) {
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		if id, ok := existing[name]; ok {
			ids = append(ids, id)
			continue
		}
		label, err := svc.Create(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		existing[name] = (*label).LabelID()
		ids = append(ids, (*label).LabelID())
	}
	return ids, nil
}

func labelIndex[T models.Label](labels []T) map[string]uint {
	index := make(map[string]uint, len(labels))
	for _, l := range labels {
		index[l.LabelName()] = l.LabelID()
	}
	return index
}

func main() {
	email := flag.String("email", "john.doe@example.com", "Email of the account that receives the recipes")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	ctx := context.Background()
	if err := database.RunMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	blobs, err := storage.New(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize blob storage")
	}

	user, err := repository.NewUserRepository(db).GetByEmail(ctx, models.NormalizeEmail(*email))
	if err != nil {
		logging.Fatal().Err(err).Str("email", *email).Msg("seed account not found, run seed_test_users first")
	}

	tagService := service.NewTagService(db)
	ingredientService := service.NewIngredientService(db)
	recipeService := service.NewRecipeService(db, blobs, cfg.MaxUploadBytes).WithMaxImagePixels(cfg.MaxImagePixels)

	tags, err := tagService.List(ctx, user.ID, false)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to list tags")
	}
	ingredients, err := ingredientService.List(ctx, user.ID, false)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to list ingredients")
	}
	tagIndex := labelIndex(tags)
	ingredientIndex := labelIndex(ingredients)

	created := 0
	for _, data := range seedRecipes {
		tagIDs, err := labelIDs(ctx, tagService, user.ID, tagIndex, data.Tags)
		if err != nil {
			logging.Error().Err(err).Str("title", data.Title).Msg("failed to create tags")
			continue
		}
		ingredientIDs, err := labelIDs(ctx, ingredientService, user.ID, ingredientIndex, data.Ingredients)
		if err != nil {
			logging.Error().Err(err).Str("title", data.Title).Msg("failed to create ingredients")
			continue
		}

		title, link, price := data.Title, data.Link, json.Number(data.Price)
		recipe, err := recipeService.Create(ctx, user.ID, &types.RecipeRequest{
			Title:       &title,
			TimeMinutes: &data.TimeMinutes,
			Price:       &price,
			Link:        &link,
			Tags:        types.NewIDList(tagIDs...),
			Ingredients: types.NewIDList(ingredientIDs...),
		})
		if err != nil {
			logging.Error().Err(err).Str("title", data.Title).Msg("failed to save recipe")
			continue
		}
		created++
		logging.Info().Uint("id", recipe.ID).Str("title", recipe.Title).Msg("created recipe")
	}

	logging.Info().Int("created", created).Str("email", user.Email).Msg("recipe seeding complete")
}
