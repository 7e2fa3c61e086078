package main

import (
	"context"

	"github.com/pageza/recipe-app/backend/config"
	"github.com/pageza/recipe-app/backend/internal/database"
	"github.com/pageza/recipe-app/backend/internal/logging"
	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/service"
)

const testPassword = "testpassword123"

func main() {
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

	authService := service.NewAuthService(db, cfg.JWTSecret)

	// Test users with different account states
	testUsers := []struct {
		name   string
		email  string
		active bool
		staff  bool
	}{
		{name: "John Doe", email: "john.doe@example.com", active: true},
		{name: "Jane Smith", email: "jane.smith@example.com", active: true},
		{name: "Bob Wilson", email: "bob.wilson@example.com", active: true},
		{name: "Admin User", email: "admin@example.com", active: true, staff: true},
		{name: "Inactive User", email: "inactive@example.com", active: false},
	}

	logging.Info().Msg("creating test users")

	for _, u := range testUsers {
		user, err := authService.Register(ctx, u.email, testPassword, u.name)
		if service.IsValidationError(err) {
			logging.Info().Str("email", u.email).Msg("user already exists, skipping")
			continue
		}
		if err != nil {
			logging.Error().Err(err).Str("email", u.email).Msg("failed to create user")
			continue
		}

		if !u.active || u.staff {
			err := db.Model(user).Updates(map[string]interface{}{
				"is_active": u.active,
				"is_staff":  u.staff,
			}).Error
			if err != nil {
				logging.Error().Err(err).Str("email", u.email).Msg("failed to set account flags")
				continue
			}
		}
		logging.Info().Str("email", u.email).Bool("active", u.active).Bool("staff", u.staff).Msg("created user")
	}

	var activeCount, inactiveCount int64
	db.Model(&models.User{}).Where("is_active = ?", true).Count(&activeCount)
	db.Model(&models.User{}).Where("is_active = ?", false).Count(&inactiveCount)

	logging.Info().
		Int64("active", activeCount).
		Int64("inactive", inactiveCount).
		Str("password", testPassword).
		Msg("test users ready")
}
