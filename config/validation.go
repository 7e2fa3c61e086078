package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// requirement is a single per-environment check
type requirement struct {
	field string
	check func(cfg *Config) bool
	msg   string
}

var (
	// Checks that apply everywhere
	baseRequirements = []requirement{
		{"DB_DRIVER", func(c *Config) bool { return c.DBDriver == "postgres" || c.DBDriver == "sqlite" }, "must be postgres or sqlite"},
		{"STORAGE_BACKEND", func(c *Config) bool { return c.StorageBackend == "local" || c.StorageBackend == "s3" }, "must be local or s3"},
		{"S3_BUCKET_NAME", func(c *Config) bool { return c.StorageBackend != "s3" || c.S3Bucket != "" }, "is required when STORAGE_BACKEND=s3"},
		{"MAX_UPLOAD_BYTES", func(c *Config) bool { return c.MaxUploadBytes > 0 }, "must be positive"},
		{"MAX_IMAGE_PIXELS", func(c *Config) bool { return c.MaxImagePixels > 0 }, "must be positive"},
		{"RECIPE_CREATE_LIMIT", func(c *Config) bool { return c.RecipeCreateLimit > 0 }, "must be positive"},
		{"IMAGE_UPLOAD_LIMIT", func(c *Config) bool { return c.ImageUploadLimit > 0 }, "must be positive"},
		{"SERVER_PORT", func(c *Config) bool { return c.ServerPort != "" }, "is required"},
	}

	// Environment-specific requirements
	requirements = map[Environment][]requirement{
		Development: {},
		Test:        {},
		CI: {
			{"JWT_SECRET", func(c *Config) bool { return c.JWTSecret != "" }, "environment variable is required in CI environment"},
			{"DB_PASSWORD", func(c *Config) bool { return c.DBDriver != "postgres" || c.DBPassword != "" }, "environment variable is required in CI environment"},
		},
		Production: {
			{"jwt_secret", func(c *Config) bool { return c.JWTSecret != "" }, "secret is required"},
			{"db_password", func(c *Config) bool { return c.DBDriver != "postgres" || c.DBPassword != "" }, "secret is required"},
			{"DB_DRIVER", func(c *Config) bool { return c.DBDriver == "postgres" }, "must be postgres in production"},
		},
	}
)

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errors []string
	for _, r := range append(baseRequirements, requirements[env]...) {
		if !r.check(cfg) {
			errors = append(errors, ValidationError{Field: r.field, Message: r.msg}.Error())
		}
	}

	// Development and test fall back to a fixed signing key
	if cfg.JWTSecret == "" && (env == Development || env == Test) {
		cfg.JWTSecret = "insecure-development-secret"
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
