package models

import "time"

// AIProfile is a reusable persona applied to a chat session.
type AIProfile struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"column:name;type:text" json:"name"`
	Description  string    `gorm:"column:description;type:text" json:"description"`
	PromptSystem string    `gorm:"column:prompt_system;type:text" json:"prompt_system"`
	AIModel      string    `gorm:"column:ai_model;type:text" json:"ai_model"` // openai|gemini
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (AIProfile) TableName() string { return "ai_profiles" }
