package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/utils"
	"gorm.io/gorm"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, s *models.ChatSession) error
	GetByID(ctx context.Context, id string) (*models.ChatSession, error)
	SetStatus(ctx context.Context, id, status string) error
	Touch(ctx context.Context, id string, at time.Time) error
}

type chatSessionRepo struct {
	db *gorm.DB
}

func NewChatSessionRepo(db *gorm.DB) ChatSessionRepository {
	return &chatSessionRepo{db: db}
}

func (r *chatSessionRepo) Create(ctx context.Context, s *models.ChatSession) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *chatSessionRepo) GetByID(ctx context.Context, id string) (*models.ChatSession, error) {
	var s models.ChatSession
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *chatSessionRepo) SetStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).
		Model(&models.ChatSession{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *chatSessionRepo) Touch(ctx context.Context, id string, at time.Time) error {
	return touchSession(r.db.WithContext(ctx), id, at)
}

func touchSession(db *gorm.DB, id string, at time.Time) error {
	res := db.Model(&models.ChatSession{}).
		Where("id = ?", id).
		Update("last_activity", at.UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
