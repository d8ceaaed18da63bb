package models

import "time"

// Defaults applied when a preference row is first created.
const (
	DefaultVoiceID         = "21m00Tcm4TlvDq8ikWAM"
	DefaultVoiceModel      = "eleven_multilingual_v2"
	DefaultStability       = 0.5
	DefaultSimilarityBoost = 0.75
	DefaultLanguage        = "id"
)

type UserPreference struct {
	UserID          string    `gorm:"column:user_id;type:text;primaryKey" json:"user_id"`
	DarkMode        bool      `gorm:"column:dark_mode" json:"dark_mode"`
	Language        string    `gorm:"column:language;type:text" json:"language"`
	VoiceID         string    `gorm:"column:voice_id;type:text" json:"voice_id"`
	VoiceModel      string    `gorm:"column:voice_model;type:text" json:"voice_model"`
	Stability       float64   `gorm:"column:stability" json:"stability"`
	SimilarityBoost float64   `gorm:"column:similarity_boost" json:"similarity_boost"`
	AIProvider      string    `gorm:"column:ai_provider;type:text" json:"ai_provider"`
	UpdatedAt       time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (UserPreference) TableName() string { return "user_preferences" }

// NewUserPreference returns the row created by the sync step.
func NewUserPreference(userID string, now time.Time) *UserPreference {
	return &UserPreference{
		UserID:          userID,
		Language:        DefaultLanguage,
		VoiceID:         DefaultVoiceID,
		VoiceModel:      DefaultVoiceModel,
		Stability:       DefaultStability,
		SimilarityBoost: DefaultSimilarityBoost,
		AIProvider:      string(ProviderOpenAI),
		UpdatedAt:       now,
	}
}
