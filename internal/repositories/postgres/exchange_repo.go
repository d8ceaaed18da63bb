package postgres

import (
	"context"
	"time"

	"github.com/yoockh/wacrm/internal/models"
	"gorm.io/gorm"
)

// Exchange is one inbound message, its reply and the session bump that
// follows them.
type Exchange struct {
	UserMessage  *models.Message
	AIMessage    *models.Message
	SessionID    string
	LastActivity time.Time
}

type ExchangeRepository interface {
	// Save writes the user message, the AI message and the session's
	// last_activity in one transaction.
	Save(ctx context.Context, ex Exchange) error
}

type exchangeRepo struct {
	db *gorm.DB
}

func NewExchangeRepo(db *gorm.DB) ExchangeRepository {
	return &exchangeRepo{db: db}
}

func (r *exchangeRepo) Save(ctx context.Context, ex Exchange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ex.UserMessage).Error; err != nil {
			return err
		}
		if err := tx.Create(ex.AIMessage).Error; err != nil {
			return err
		}
		return touchSession(tx, ex.SessionID, ex.LastActivity)
	})
}
