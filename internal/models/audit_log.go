package models

import (
	"time"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`           // Nullable for anonymous actions such as reset requests
	Action    string    `gorm:"size:50;not null" json:"action"` // e.g. "REGISTER", "FOLLOW", "RESET_PASSWORD"
	EntityID  string    `gorm:"size:64" json:"entity_id"`       // Username or post id affected
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	Timestamp time.Time `json:"timestamp"`
}
