package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipe-app/backend/internal/models"
)

type TokenRepository struct{ db *gorm.DB }

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// GetOrCreate returns the user's token, creating one on first use
func (r *TokenRepository) GetOrCreate(ctx context.Context, userID uint) (*models.AuthToken, error) {
	var tok models.AuthToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&tok).Error
	if err == nil {
		return &tok, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load token: %w", err)
	}

	tok = models.AuthToken{
		Key:       uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	// A concurrent login may have created the row first; keep theirs.
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tok)
	if res.Error != nil {
		return nil, fmt.Errorf("create token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&tok).Error; err != nil {
			return nil, fmt.Errorf("load token: %w", err)
		}
	}
	return &tok, nil
}

func (r *TokenRepository) GetByKey(ctx context.Context, key string) (*models.AuthToken, error) {
	var tok models.AuthToken
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&tok).Error; err != nil {
		return nil, err
	}
	return &tok, nil
}

func (r *TokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AuthToken{}).Error; err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
