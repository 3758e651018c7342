package handlers

import (
	"fmt"
	"net/http"
	"time"

	"microblog/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// AuthRequired accepts a session cookie or an X-API-Key header and records last_seen.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := h.resolveUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if err := h.identityService.TouchLastSeen(userID, time.Now()); err != nil {
			h.logger.Warn("Failed to update last seen", "user_id", userID, "error", err)
		}
		c.Next()
	}
}

// resolveUser stores the caller's id in the context when one can be established.
func (h *Handler) resolveUser(c *gin.Context) (uint, bool) {
	if id, ok := c.Get(userIDKey); ok {
		return id.(uint), true
	}

	session := sessions.Default(c)
	if id, ok := session.Get(userIDKey).(uint); ok {
		// Sessions can outlive the account
		if _, err := h.identityService.GetByID(id); err == nil {
			c.Set(userIDKey, id)
			return id, true
		}
	}

	if apiKey := c.GetHeader("X-API-Key"); apiKey != "" {
		if user, err := h.identityService.GetByAPIKey(apiKey); err == nil {
			c.Set(userIDKey, user.ID)
			return user.ID, true
		}
	}
	return 0, false
}

func currentUserID(c *gin.Context) uint {
	return c.MustGet(userIDKey).(uint)
}

// Recovery logs panics and notifies ADMINS by mail.
func (h *Handler) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		h.logger.Error("Panic while serving request",
			"path", c.Request.URL.Path,
			"request_id", c.GetString("request_id"),
			"panic", recovered,
		)
		if admins := h.cfg.AdminList(); len(admins) > 0 {
			h.mailService.Send(services.Message{
				To:       admins,
				Subject:  "[Microblog] Failure",
				TextBody: fmt.Sprintf("%s %s\nrequest id: %s\n\n%v", c.Request.Method, c.Request.URL.Path, c.GetString("request_id"), recovered),
			})
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}
