package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/wacrm/internal/models"
	pgrepo "github.com/yoockh/wacrm/internal/repositories/postgres"
	"github.com/yoockh/wacrm/internal/utils"
)

const (
	LangID = "id"
	LangEN = "en"
)

const (
	defaultPersonaID = "Anda adalah asisten layanan pelanggan yang ramah dan membantu untuk bisnis kami di WhatsApp. Jawablah dengan singkat, sopan, dan dalam Bahasa Indonesia."
	defaultPersonaEN = "You are a friendly and helpful customer service assistant for our business on WhatsApp. Answer concisely and politely in English."

	connectiveID = "\n\nGunakan informasi berikut sebagai referensi untuk menjawab:\n\n"
	connectiveEN = "\n\nUse the following information as reference when answering:\n\n"

	groundingSeparator = "\n\n"
)

// NormalizeLanguage maps a request language to one of the supported prompt
// languages. Indonesian is the default.
func NormalizeLanguage(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	if l == LangEN || strings.HasPrefix(l, "en-") || strings.HasPrefix(l, "en_") {
		return LangEN
	}
	return LangID
}

func DefaultPersona(lang string) string {
	if NormalizeLanguage(lang) == LangEN {
		return defaultPersonaEN
	}
	return defaultPersonaID
}

func connective(lang string) string {
	if NormalizeLanguage(lang) == LangEN {
		return connectiveEN
	}
	return connectiveID
}

// SystemPrompt is an assembled prompt plus what went into it.
type SystemPrompt struct {
	Text             string            `json:"text"`
	Language         string            `json:"language"`
	Profile          *models.AIProfile `json:"profile,omitempty"`
	GroundingRecords int               `json:"grounding_records"`
	SkippedRecords   int               `json:"skipped_records"`
	DroppedRecords   int               `json:"dropped_records"`
	Truncated        bool              `json:"truncated"`
}

type ContextService interface {
	BuildSystemPrompt(ctx context.Context, sessionID, language string) (string, error)
	BuildForSession(ctx context.Context, session *models.ChatSession, language string) (*SystemPrompt, error)
}

type contextService struct {
	sessions pgrepo.ChatSessionRepository
	profiles pgrepo.AIProfileRepository
	training pgrepo.TrainingRepository
	maxChars int // 0 = unlimited
	log      *logrus.Logger
}

func NewContextService(sessions pgrepo.ChatSessionRepository, profiles pgrepo.AIProfileRepository, training pgrepo.TrainingRepository, maxGroundingChars int, log *logrus.Logger) ContextService {
	return &contextService{
		sessions: sessions,
		profiles: profiles,
		training: training,
		maxChars: maxGroundingChars,
		log:      log,
	}
}

func (s *contextService) BuildSystemPrompt(ctx context.Context, sessionID, language string) (string, error) {
	const op = "ContextService.BuildSystemPrompt"

	if sessionID == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return "", utils.E(utils.CodeInternal, op, "failed to get session", err)
	}

	sp, err := s.BuildForSession(ctx, session, language)
	if err != nil {
		return "", err
	}
	return sp.Text, nil
}

func (s *contextService) BuildForSession(ctx context.Context, session *models.ChatSession, language string) (*SystemPrompt, error) {
	const op = "ContextService.BuildForSession"

	if session == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session is required", nil)
	}
	lang := NormalizeLanguage(language)

	records, err := s.training.ListAll(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read training data", err)
	}

	profile, err := s.sessionProfile(ctx, session)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read ai profile", err)
	}

	persona := DefaultPersona(lang)
	if profile != nil && strings.TrimSpace(profile.PromptSystem) != "" {
		persona = profile.PromptSystem
	}

	g := buildGrounding(records, s.maxChars)
	dropped := len(records) - g.kept - g.skipped
	if dropped > 0 || g.truncated {
		s.log.WithFields(logrus.Fields{
			"session_id": session.ID,
			"records":    len(records),
			"kept":       g.kept,
			"skipped":    g.skipped,
			"truncated":  g.truncated,
			"max_chars":  s.maxChars,
		}).Warn("grounding exceeds budget; trimmed")
	}

	text := persona
	if g.text != "" {
		text += connective(lang) + g.text
	}

	return &SystemPrompt{
		Text:             text,
		Language:         lang,
		Profile:          profile,
		GroundingRecords: g.kept,
		SkippedRecords:   g.skipped,
		DroppedRecords:   dropped,
		Truncated:        g.truncated,
	}, nil
}

// sessionProfile returns nil when the session has no profile or the
// referenced profile no longer exists.
func (s *contextService) sessionProfile(ctx context.Context, session *models.ChatSession) (*models.AIProfile, error) {
	if session.AIProfileID == nil || *session.AIProfileID == "" {
		return nil, nil
	}
	p, err := s.profiles.GetByID(ctx, *session.AIProfileID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			s.log.WithFields(logrus.Fields{
				"session_id":    session.ID,
				"ai_profile_id": *session.AIProfileID,
			}).Warn("session references a missing ai profile; using default persona")
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

type grounding struct {
	text      string
	kept      int // records whose content made it into text
	skipped   int // blank records, never counted as kept
	truncated bool
}

// buildGrounding joins record contents with a blank line. With a positive
// budget (in characters), records are dropped whole from the end; a first
// record that alone exceeds the budget is cut.
func buildGrounding(records []models.TrainingRecord, maxChars int) grounding {
	var b strings.Builder
	g := grounding{}
	chars := 0
	for _, r := range records {
		if strings.TrimSpace(r.Content) == "" {
			g.skipped++
			continue
		}
		sep := ""
		if b.Len() > 0 {
			sep = groundingSeparator
		}
		n := utf8.RuneCountInString(sep) + utf8.RuneCountInString(r.Content)
		if maxChars > 0 && chars+n > maxChars {
			if b.Len() == 0 {
				b.WriteString(truncateRunes(r.Content, maxChars))
				g.kept++
				g.truncated = true
			}
			break
		}
		b.WriteString(sep)
		b.WriteString(r.Content)
		chars += n
		g.kept++
	}
	g.text = b.String()
	return g
}

func truncateRunes(s string, maxChars int) string {
	i := 0
	for pos := range s {
		if i == maxChars {
			return s[:pos]
		}
		i++
	}
	return s
}
