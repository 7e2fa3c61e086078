package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/pageza/recipe-app/backend/internal/logging"
	"github.com/pageza/recipe-app/backend/internal/metrics"
	"github.com/pageza/recipe-app/backend/internal/models"
)

// RecipeImagePrefix is the key prefix of uploaded recipe images
const RecipeImagePrefix = "uploads/recipe"

const msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// RecipeImageKey builds uploads/recipe/<uuid><ext> for an uploaded file. The extension comes
// from the original name, falling back to the decoded format.
func RecipeImageKey(filename, format string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || ext == "." {
		ext = "." + format
	}
	return path.Join(RecipeImagePrefix, uuid.NewString()+ext)
}

// UploadImage validates data as an image, stores it and points the recipe at it.
// Dimensions are checked from the header before the pixels are decoded.
// The blob is written before the row changes; a failed row update removes the new blob,
// a successful one removes the previous blob.
func (s *RecipeService) UploadImage(ctx context.Context, userID, id uint, filename string, data []byte) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		metrics.RecordImageUpload("invalid")
		return nil, NewValidationError("image", "The submitted file is empty.")
	}
	if s.maxUploadBytes > 0 && int64(len(data)) > s.maxUploadBytes {
		metrics.RecordImageUpload("invalid")
		return nil, NewValidationError("image", fmt.Sprintf("Ensure the file is no larger than %d bytes.", s.maxUploadBytes))
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		metrics.RecordImageUpload("invalid")
		return nil, NewValidationError("image", msgInvalidImage)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > s.maxImagePixels {
		metrics.RecordImageUpload("invalid")
		return nil, NewValidationError("image", fmt.Sprintf("Ensure the image has no more than %d pixels.", s.maxImagePixels))
	}
	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		metrics.RecordImageUpload("invalid")
		return nil, NewValidationError("image", msgInvalidImage)
	}

	key := RecipeImageKey(filename, format)
	if err := s.blobs.Put(ctx, key, data, "image/"+format); err != nil {
		metrics.RecordImageUpload("error")
		return nil, fmt.Errorf("store image: %w", err)
	}

	previous, err := s.recipes.SetImage(ctx, userID, recipe.ID, key)
	if err != nil {
		s.deleteBlob(ctx, key)
		metrics.RecordImageUpload("error")
		return nil, notFound(err)
	}

	recipe.Image = key
	if previous != "" && previous != key {
		s.deleteBlob(ctx, previous)
	}

	metrics.RecordImageUpload("success")
	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Str("key", key).Msg("recipe image uploaded")
	return recipe, nil
}
