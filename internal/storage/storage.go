// Package storage keeps uploaded recipe images in a blob store addressed by key.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/recipe-app/backend/config"
)

// ErrInvalidKey is returned for keys that are empty or escape the store root
var ErrInvalidKey = errors.New("invalid blob key")

// BlobStore stores opaque blobs under keys such as uploads/recipe/<uuid>.png
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// New builds the store selected by cfg.StorageBackend
func New(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageBackend {
	case "s3":
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		if cfg.S3PublicRead {
			if err := s3cfg.SetupBucketPolicy(ctx); err != nil {
				return nil, fmt.Errorf("failed to apply bucket policy: %w", err)
			}
		}
		return NewS3Store(s3cfg.Client, s3cfg.BucketName, s3cfg.PublicURL), nil
	case "local", "":
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}
