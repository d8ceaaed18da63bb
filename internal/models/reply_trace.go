package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReplyTrace records how far one orchestration got. Stored in Mongo with a TTL.
type ReplyTrace struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	SessionID string             `bson:"session_id" json:"session_id"`
	ContactID string             `bson:"contact_id" json:"contact_id"`
	UserID    string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Language  string             `bson:"language" json:"language"`

	Provider    string  `bson:"provider,omitempty" json:"provider,omitempty"`
	AIProfileID *string `bson:"ai_profile_id,omitempty" json:"ai_profile_id,omitempty"`
	State       string  `bson:"state" json:"state"` // last state reached, or "failed"
	FailedAt    string  `bson:"failed_at,omitempty" json:"failed_at,omitempty"`
	Error       string  `bson:"error,omitempty" json:"error,omitempty"`

	HistoryTurns   int    `bson:"history_turns" json:"history_turns"`
	PromptChars    int    `bson:"prompt_chars" json:"prompt_chars"`
	SpeechStatus   string `bson:"speech_status" json:"speech_status"` // skipped|done|failed
	SpeechError    string `bson:"speech_error,omitempty" json:"speech_error,omitempty"`
	ProviderTimeMS int64  `bson:"provider_time_ms,omitempty" json:"provider_time_ms,omitempty"`
	TotalTimeMS    int64  `bson:"total_time_ms" json:"total_time_ms"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time `bson:"expires_at,omitempty" json:"expires_at"` // for TTL index; zero keeps the trace
}
