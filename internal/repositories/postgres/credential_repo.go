package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CredentialRepository interface {
	GetByKeyName(ctx context.Context, keyName string) (*models.ApiCredential, error)
	Upsert(ctx context.Context, c *models.ApiCredential) error
}

type credentialRepo struct {
	db *gorm.DB
}

func NewCredentialRepo(db *gorm.DB) CredentialRepository {
	return &credentialRepo{db: db}
}

func (r *credentialRepo) GetByKeyName(ctx context.Context, keyName string) (*models.ApiCredential, error) {
	var c models.ApiCredential
	err := r.db.WithContext(ctx).
		Where("key_name = ?", keyName).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *credentialRepo) Upsert(ctx context.Context, c *models.ApiCredential) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"key_value", "key_type", "updated_by", "updated_at"}),
		}).
		Create(c).Error
}
