package services

import (
	"context"
	"strings"

	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/providers/llm"
	pgrepo "github.com/yoockh/wacrm/internal/repositories/postgres"
	"github.com/yoockh/wacrm/internal/utils"
)

const DefaultHistoryLimit = 10

type HistoryService interface {
	// LoadRecentTurns returns the last limit messages of a contact,
	// oldest first. limit <= 0 uses the configured default.
	LoadRecentTurns(ctx context.Context, contactID string, limit int) ([]llm.Turn, error)
}

type historyService struct {
	messages     pgrepo.MessageRepository
	defaultLimit int
}

func NewHistoryService(messages pgrepo.MessageRepository, defaultLimit int) HistoryService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultHistoryLimit
	}
	return &historyService{messages: messages, defaultLimit: defaultLimit}
}

func (s *historyService) LoadRecentTurns(ctx context.Context, contactID string, limit int) ([]llm.Turn, error) {
	const op = "HistoryService.LoadRecentTurns"

	if contactID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "contact_id is required", nil)
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	rows, err := s.messages.LatestByContact(ctx, contactID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load history", err)
	}

	turns := make([]llm.Turn, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		turns = append(turns, llm.Turn{Role: turnRole(rows[i].Role), Content: rows[i].Content})
	}
	return turns, nil
}

// turnRole folds the open role column onto the two roles providers know.
func turnRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case models.RoleAIMessage, "assistant", "model":
		return llm.RoleAI
	default:
		return llm.RoleUser
	}
}
