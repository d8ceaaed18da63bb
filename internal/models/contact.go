package models

import (
	"time"

	"github.com/lib/pq"
)

type Contact struct {
	ID          string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"column:name;type:text" json:"name"`
	PhoneNumber string         `gorm:"column:phone_number;type:text;uniqueIndex" json:"phone_number"`
	Tags        pq.StringArray `gorm:"column:tags;type:text[]" json:"tags"`
	CreatedAt   time.Time      `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Contact) TableName() string { return "contacts" }
