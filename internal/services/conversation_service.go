package services

import (
	"context"

	"github.com/yoockh/wacrm/internal/models"
	pgrepo "github.com/yoockh/wacrm/internal/repositories/postgres"
	"github.com/yoockh/wacrm/internal/utils"
)

const maxConversationPage = 200

type ConversationService interface {
	// ListByContact returns the contact's latest messages, oldest first.
	ListByContact(ctx context.Context, contactID string, limit int) ([]models.Message, error)
}

type conversationService struct {
	messages pgrepo.MessageRepository
	contacts pgrepo.ContactRepository
}

func NewConversationService(messages pgrepo.MessageRepository, contacts pgrepo.ContactRepository) ConversationService {
	return &conversationService{messages: messages, contacts: contacts}
}

func (s *conversationService) ListByContact(ctx context.Context, contactID string, limit int) ([]models.Message, error) {
	const op = "ConversationService.ListByContact"

	if contactID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "contact_id is required", nil)
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > maxConversationPage {
		limit = maxConversationPage
	}

	ok, err := s.contacts.Exists(ctx, contactID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to check contact", err)
	}
	if !ok {
		return nil, utils.E(utils.CodeNotFound, op, "contact not found", utils.ErrNotFound)
	}

	rows, err := s.messages.LatestByContact(ctx, contactID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list messages", err)
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
