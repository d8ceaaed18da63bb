package models

import "time"

// ApiCredential is a named provider secret. key_name is unique: writes are
// upserts.
type ApiCredential struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	KeyName   string    `gorm:"column:key_name;type:text;uniqueIndex" json:"key_name"`
	KeyValue  string    `gorm:"column:key_value;type:text" json:"-"`
	KeyType   string    `gorm:"column:key_type;type:text" json:"key_type"` // openai|gemini|elevenlabs
	UpdatedBy string    `gorm:"column:updated_by;type:text" json:"updated_by"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (ApiCredential) TableName() string { return "api_keys" }
