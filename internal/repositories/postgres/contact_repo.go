package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/utils"
	"gorm.io/gorm"
)

type ContactRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Contact, error)
}

type contactRepo struct {
	db *gorm.DB
}

func NewContactRepo(db *gorm.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *contactRepo) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	var c models.Contact
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}
