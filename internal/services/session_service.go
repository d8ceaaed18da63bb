package services

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/wacrm/internal/models"
	pgrepo "github.com/yoockh/wacrm/internal/repositories/postgres"
	"github.com/yoockh/wacrm/internal/utils"

	"github.com/google/uuid"
)

type SessionService interface {
	Start(ctx context.Context, contactID string, aiProfileID *string) (*models.ChatSession, error)
	Get(ctx context.Context, sessionID string) (*models.ChatSession, error)
	SetStatus(ctx context.Context, sessionID, status string) (*models.ChatSession, error)
}

type sessionService struct {
	sessions pgrepo.ChatSessionRepository
	contacts pgrepo.ContactRepository
	profiles pgrepo.AIProfileRepository
	now      func() time.Time
}

func NewSessionService(sessions pgrepo.ChatSessionRepository, contacts pgrepo.ContactRepository, profiles pgrepo.AIProfileRepository) SessionService {
	return &sessionService{
		sessions: sessions,
		contacts: contacts,
		profiles: profiles,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *sessionService) Start(ctx context.Context, contactID string, aiProfileID *string) (*models.ChatSession, error) {
	const op = "SessionService.Start"

	if contactID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "contact_id is required", nil)
	}

	ok, err := s.contacts.Exists(ctx, contactID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to check contact", err)
	}
	if !ok {
		return nil, utils.E(utils.CodeNotFound, op, "contact not found", utils.ErrNotFound)
	}

	if aiProfileID != nil && *aiProfileID == "" {
		aiProfileID = nil
	}
	if aiProfileID != nil {
		if _, err := s.profiles.GetByID(ctx, *aiProfileID); err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return nil, utils.E(utils.CodeNotFound, op, "ai profile not found", err)
			}
			return nil, utils.E(utils.CodeInternal, op, "failed to check ai profile", err)
		}
	}

	now := s.now().Truncate(time.Microsecond)
	session := &models.ChatSession{
		ID:           uuid.NewString(),
		ContactID:    contactID,
		Status:       models.SessionOpen,
		LastActivity: now,
		AIProfileID:  aiProfileID,
		CreatedAt:    now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	const op = "SessionService.Get"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	out, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	return out, nil
}

// SetStatus moves a session between open, pending and closed. Closing is a
// status change; sessions are never deleted.
func (s *sessionService) SetStatus(ctx context.Context, sessionID, status string) (*models.ChatSession, error) {
	const op = "SessionService.SetStatus"

	if sessionID == "" || status == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id and status are required", nil)
	}
	if !models.ValidSessionStatus(status) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "status must be open, pending, or closed", nil)
	}

	if err := s.sessions.SetStatus(ctx, sessionID, status); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to set status", err)
	}
	return s.Get(ctx, sessionID)
}
