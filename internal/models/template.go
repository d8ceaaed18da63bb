package models

import "time"

// Template is a reusable message template. Managed by the dashboard screens;
// the backend only references it from messages.
type Template struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:text" json:"name"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	Category  string    `gorm:"column:category;type:text" json:"category"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Template) TableName() string { return "templates" }
