package models

import "time"

const (
	SessionOpen    = "open"
	SessionPending = "pending"
	SessionClosed  = "closed"
)

func ValidSessionStatus(s string) bool {
	switch s {
	case SessionOpen, SessionPending, SessionClosed:
		return true
	}
	return false
}

// ChatSession is a conversation thread with exactly one contact. Sessions are
// closed by status, never deleted.
type ChatSession struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ContactID    string    `gorm:"column:contact_id;type:uuid;index" json:"contact_id"`
	Status       string    `gorm:"column:status;type:text" json:"status"` // open|pending|closed
	LastActivity time.Time `gorm:"column:last_activity;type:timestamptz" json:"last_activity"`
	AssignedTo   *string   `gorm:"column:assigned_to;type:uuid" json:"assigned_to,omitempty"`
	AIProfileID  *string   `gorm:"column:ai_profile_id;type:uuid" json:"ai_profile_id,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (ChatSession) TableName() string { return "chat_sessions" }
