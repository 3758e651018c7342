package models

import (
	"time"
)

// MaxPostLength is the body limit in characters.
const MaxPostLength = 140

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Body      string    `gorm:"size:140;not null" json:"body"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Author    *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Language  string    `gorm:"size:5" json:"language,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}
