package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/utils"
	"gorm.io/gorm"
)

type AIProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.AIProfile, error)
}

type aiProfileRepo struct {
	db *gorm.DB
}

func NewAIProfileRepo(db *gorm.DB) AIProfileRepository {
	return &aiProfileRepo{db: db}
}

func (r *aiProfileRepo) GetByID(ctx context.Context, id string) (*models.AIProfile, error) {
	var p models.AIProfile
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}
