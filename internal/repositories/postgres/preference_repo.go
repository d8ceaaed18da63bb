package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserPreference, error)
	// CreateIfMissing inserts p unless a row for p.UserID already exists.
	CreateIfMissing(ctx context.Context, p *models.UserPreference) error
	Upsert(ctx context.Context, p *models.UserPreference) error
}

type preferenceRepo struct {
	db *gorm.DB
}

func NewPreferenceRepo(db *gorm.DB) PreferenceRepository {
	return &preferenceRepo{db: db}
}

func (r *preferenceRepo) GetByUserID(ctx context.Context, userID string) (*models.UserPreference, error) {
	var p models.UserPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}

func (r *preferenceRepo) CreateIfMissing(ctx context.Context, p *models.UserPreference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(p).Error
}

func (r *preferenceRepo) Upsert(ctx context.Context, p *models.UserPreference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"dark_mode", "language", "voice_id", "voice_model", "stability", "similarity_boost", "ai_provider", "updated_at"}),
		}).
		Create(p).Error
}
