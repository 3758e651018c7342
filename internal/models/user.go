package models

import (
	"time"
)

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null;size:64" json:"username"`
	Email        string     `gorm:"uniqueIndex;not null;size:120" json:"email"`
	PasswordHash *string    `gorm:"size:256" json:"-"` // NULL until a password is set
	AboutMe      *string    `gorm:"size:140" json:"about_me,omitempty"`
	LastSeen     *time.Time `json:"last_seen,omitempty"`
	APIKey       string     `gorm:"uniqueIndex;size:36" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}
