package postgres

import (
	"context"

	"github.com/yoockh/wacrm/internal/models"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Insert(ctx context.Context, m *models.Message) error
	// LatestByContact returns up to n messages, newest first.
	LatestByContact(ctx context.Context, contactID string, n int) ([]models.Message, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Insert(ctx context.Context, m *models.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *messageRepo) LatestByContact(ctx context.Context, contactID string, n int) ([]models.Message, error) {
	if n <= 0 {
		n = 10
	}
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(n).
		Find(&rows).Error
	return rows, err
}
