package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost      string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ServerPort      string        `envconfig:"SERVER_PORT" default:"8000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`

	// Database configuration
	DBDriver      string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost        string `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string `envconfig:"DB_PORT" default:"5432"`
	DBUser        string `envconfig:"DB_USER" default:"postgres"`
	DBPassword    string `envconfig:"DB_PASSWORD"`
	DBName        string `envconfig:"DB_NAME" default:"recipes"`
	DBSSLMode     string `envconfig:"DB_SSL_MODE" default:"disable"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"recipes.db"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"migrations"`

	// Redis configuration, rate limiting is disabled when neither URL nor host is set
	RedisURL      string `envconfig:"REDIS_URL"`
	RedisHost     string `envconfig:"REDIS_HOST"`
	RedisPort     string `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	RecipeCreateLimit int `envconfig:"RECIPE_CREATE_LIMIT" default:"60"`
	ImageUploadLimit  int `envconfig:"IMAGE_UPLOAD_LIMIT" default:"30"`

	// JWT configuration
	JWTSecret string `envconfig:"JWT_SECRET"`

	// Blob storage configuration
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"local"`
	MediaRoot      string `envconfig:"MEDIA_ROOT" default:"media"`
	MediaURL       string `envconfig:"MEDIA_URL" default:"/media"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	MaxImagePixels int64  `envconfig:"MAX_IMAGE_PIXELS" default:"40000000"`
	S3Bucket       string `envconfig:"S3_BUCKET_NAME"`
	S3Endpoint     string `envconfig:"S3_ENDPOINT"`
	S3PublicURL    string `envconfig:"S3_PUBLIC_URL"`
	S3PublicRead   bool   `envconfig:"S3_PUBLIC_READ" default:"false"`
	AWSRegion      string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Logging configuration
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// RateLimitEnabled reports whether a Redis backend is configured
func (c *Config) RateLimitEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	// CI injects secrets as environment variables, everything else may mount Docker secrets
	if env != CI {
		loadSecrets(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadSecrets overrides sensitive values with Docker secrets when they are present
func loadSecrets(cfg *Config) {
	if v := readSecret("db_password"); v != "" {
		cfg.DBPassword = v
	}
	if v := readSecret("jwt_secret"); v != "" {
		cfg.JWTSecret = v
	}
	if v := readSecret("redis_password"); v != "" {
		cfg.RedisPassword = v
	}
	if v := readSecret("redis_url"); v != "" {
		cfg.RedisURL = v
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
