package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/avasilyev/pokedex-api/internal/models"
)

// Usage and error logs are append-only: rows are never updated or deleted,
// and FindAll returns them in write order.

type UsageLogRepo struct {
	DB *gorm.DB
}

func (r *UsageLogRepo) Append(ctx context.Context, entry *models.UsageLog) error {
	return r.DB.WithContext(ctx).Create(entry).Error
}

func (r *UsageLogRepo) FindAll(ctx context.Context) ([]models.UsageLog, error) {
	var entries []models.UsageLog
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

type ErrorLogRepo struct {
	DB *gorm.DB
}

func (r *ErrorLogRepo) Append(ctx context.Context, entry *models.ErrorLog) error {
	return r.DB.WithContext(ctx).Create(entry).Error
}

func (r *ErrorLogRepo) FindAll(ctx context.Context) ([]models.ErrorLog, error) {
	var entries []models.ErrorLog
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
