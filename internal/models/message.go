package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUserMessage = "user"
	RoleAIMessage   = "ai"
)

// Message is one immutable turn of a conversation, ordered by Timestamp.
type Message struct {
	ID             string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ContactID      string         `gorm:"column:contact_id;type:uuid;index:idx_messages_contact_ts,priority:1" json:"contact_id"`
	Role           string         `gorm:"column:role;type:text" json:"role"` // "user" | "ai"
	Content        string         `gorm:"column:content;type:text" json:"content"`
	Timestamp      time.Time      `gorm:"column:timestamp;type:timestamptz;index:idx_messages_contact_ts,priority:2" json:"timestamp"`
	AIProfileID    *string        `gorm:"column:ai_profile_id;type:uuid" json:"ai_profile_id,omitempty"`
	TemplateID     *string        `gorm:"column:template_id;type:uuid" json:"template_id,omitempty"`
	TrainingDataID *string        `gorm:"column:training_data_id;type:uuid" json:"training_data_id,omitempty"`
	Metadata       datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
}

func (Message) TableName() string { return "messages" }
