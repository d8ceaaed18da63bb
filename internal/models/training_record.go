package models

import "time"

type TrainingRecord struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"column:title;type:text" json:"title"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	Category  *string   `gorm:"column:category;type:text" json:"category,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (TrainingRecord) TableName() string { return "training_data" }
