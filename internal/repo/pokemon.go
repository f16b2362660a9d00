package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avasilyev/pokedex-api/internal/models"
)

type PokemonRepo struct {
	DB *gorm.DB
}

func (r *PokemonRepo) List(ctx context.Context, after, count int) ([]models.Pokemon, error) {
	var items []models.Pokemon
	if err := r.DB.WithContext(ctx).
		Order("id ASC").
		Offset(after).
		Limit(count).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PokemonRepo) FindByID(ctx context.Context, id int) (*models.Pokemon, error) {
	var p models.Pokemon
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PokemonRepo) Create(ctx context.Context, p *models.Pokemon) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *PokemonRepo) Save(ctx context.Context, p *models.Pokemon) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

func (r *PokemonRepo) Delete(ctx context.Context, id int) (int64, error) {
	result := r.DB.WithContext(ctx).Delete(&models.Pokemon{}, id)
	return result.RowsAffected, result.Error
}
