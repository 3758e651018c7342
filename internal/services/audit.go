package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"microblog/internal/models"

	"gorm.io/gorm"
)

const (
	ActionRegister      = "REGISTER"
	ActionLogin         = "LOGIN"
	ActionFollow        = "FOLLOW"
	ActionUnfollow      = "UNFOLLOW"
	ActionPost          = "POST"
	ActionResetRequest  = "RESET_REQUEST"
	ActionResetPassword = "RESET_PASSWORD"
	ActionDeleteAccount = "DELETE_ACCOUNT"
)

type AuditService struct {
	db      *gorm.DB
	logger  *slog.Logger
	entries chan models.AuditLog
}

func NewAuditService(db *gorm.DB, logger *slog.Logger) *AuditService {
	return &AuditService{
		db:      db,
		logger:  logger,
		entries: make(chan models.AuditLog, 100),
	}
}

func (s *AuditService) Start(ctx context.Context) {
	s.logger.Info("Audit worker starting")
	for {
		select {
		case entry := <-s.entries:
			if err := s.db.Create(&entry).Error; err != nil {
				s.logger.Error("Failed to write audit log", "action", entry.Action, "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("Audit worker stopping")
			return
		}
	}
}

// LogAction never blocks the caller; entries are dropped when the buffer is full.
func (s *AuditService) LogAction(userID *uint, action, entityID string, details interface{}, ip string) {
	var detailText string
	if details != nil {
		detailBytes, err := json.Marshal(details)
		if err == nil {
			detailText = string(detailBytes)
		}
	}

	entry := models.AuditLog{
		UserID:    userID,
		Action:    action,
		EntityID:  entityID,
		Details:   detailText,
		IPAddress: ip,
		Timestamp: time.Now().UTC(),
	}

	select {
	case s.entries <- entry:
	default:
		s.logger.Warn("Audit channel full, dropping log", "action", action)
	}
}
