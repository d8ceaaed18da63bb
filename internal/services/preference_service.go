package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yoockh/wacrm/internal/models"
	pgrepo "github.com/yoockh/wacrm/internal/repositories/postgres"
	"github.com/yoockh/wacrm/internal/utils"
)

// PreferenceUpdate is a partial update; nil fields are left unchanged.
type PreferenceUpdate struct {
	DarkMode        *bool    `json:"dark_mode"`
	Language        *string  `json:"language"`
	VoiceID         *string  `json:"voice_id"`
	VoiceModel      *string  `json:"voice_model"`
	Stability       *float64 `json:"stability"`
	SimilarityBoost *float64 `json:"similarity_boost"`
	AIProvider      *string  `json:"ai_provider"`
}

type PreferenceService interface {
	// Sync returns the principal's preferences, creating the default row
	// first when none exists.
	Sync(ctx context.Context, p models.Principal) (*models.UserPreference, error)
	Update(ctx context.Context, p models.Principal, in PreferenceUpdate) (*models.UserPreference, error)
}

type preferenceService struct {
	prefs pgrepo.PreferenceRepository
	now   func() time.Time
}

func NewPreferenceService(prefs pgrepo.PreferenceRepository) PreferenceService {
	return &preferenceService{prefs: prefs, now: func() time.Time { return time.Now().UTC() }}
}

func (s *preferenceService) Sync(ctx context.Context, p models.Principal) (*models.UserPreference, error) {
	const op = "PreferenceService.Sync"

	if p.IsZero() {
		return nil, utils.E(utils.CodeUnauthorized, op, "principal is required", nil)
	}

	pref, err := s.prefs.GetByUserID(ctx, p.UserID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to get preferences", err)
	}

	if err := s.prefs.CreateIfMissing(ctx, models.NewUserPreference(p.UserID, s.now())); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create preferences", err)
	}
	// re-read: a concurrent sync may have won the insert
	pref, err = s.prefs.GetByUserID(ctx, p.UserID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to get preferences", err)
	}
	return pref, nil
}

func (s *preferenceService) Update(ctx context.Context, p models.Principal, in PreferenceUpdate) (*models.UserPreference, error) {
	const op = "PreferenceService.Update"

	pref, err := s.Sync(ctx, p)
	if err != nil {
		return nil, err
	}

	if in.DarkMode != nil {
		pref.DarkMode = *in.DarkMode
	}
	if in.Language != nil {
		l := strings.ToLower(strings.TrimSpace(*in.Language))
		if l != LangID && l != LangEN {
			return nil, utils.E(utils.CodeInvalidArgument, op, "language must be 'id' or 'en'", nil)
		}
		pref.Language = l
	}
	if in.VoiceID != nil {
		if strings.TrimSpace(*in.VoiceID) == "" {
			return nil, utils.E(utils.CodeInvalidArgument, op, "voice_id must not be empty", nil)
		}
		pref.VoiceID = strings.TrimSpace(*in.VoiceID)
	}
	if in.VoiceModel != nil {
		pref.VoiceModel = strings.TrimSpace(*in.VoiceModel)
	}
	if in.Stability != nil {
		if !unitInterval(*in.Stability) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "stability must be between 0 and 1", nil)
		}
		pref.Stability = *in.Stability
	}
	if in.SimilarityBoost != nil {
		if !unitInterval(*in.SimilarityBoost) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "similarity_boost must be between 0 and 1", nil)
		}
		pref.SimilarityBoost = *in.SimilarityBoost
	}
	if in.AIProvider != nil {
		v := models.Provider(strings.ToLower(strings.TrimSpace(*in.AIProvider)))
		if v != models.ProviderOpenAI && v != models.ProviderGemini {
			return nil, utils.E(utils.CodeInvalidArgument, op, "ai_provider must be 'openai' or 'gemini'", nil)
		}
		pref.AIProvider = string(v)
	}
	pref.UpdatedAt = s.now()

	if err := s.prefs.Upsert(ctx, pref); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save preferences", err)
	}
	return pref, nil
}

func unitInterval(v float64) bool { return v >= 0 && v <= 1 }
