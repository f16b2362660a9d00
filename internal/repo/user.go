package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avasilyev/pokedex-api/internal/models"
)

var ErrNotFound = errors.New("record not found")

type UserRepo struct {
	DB *gorm.DB
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByAccessToken resolves the user whose current access-token slot holds
// token. An empty token never matches.
func (r *UserRepo) FindByAccessToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	var user models.User
	if err := r.DB.WithContext(ctx).Where("access_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

// UpdateAccessToken overwrites the user's single access-token slot. Passing
// an empty token clears the slot.
func (r *UserRepo) UpdateAccessToken(ctx context.Context, username, token string) error {
	return r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Update("access_token", token).Error
}
