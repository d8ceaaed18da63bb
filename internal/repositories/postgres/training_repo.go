package postgres

import (
	"context"

	"github.com/yoockh/wacrm/internal/models"
	"gorm.io/gorm"
)

type TrainingRepository interface {
	// ListAll returns every training record in a stable order.
	ListAll(ctx context.Context) ([]models.TrainingRecord, error)
}

type trainingRepo struct {
	db *gorm.DB
}

func NewTrainingRepo(db *gorm.DB) TrainingRepository {
	return &trainingRepo{db: db}
}

func (r *trainingRepo) ListAll(ctx context.Context) ([]models.TrainingRecord, error) {
	var rows []models.TrainingRecord
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
