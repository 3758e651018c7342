package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"microblog/internal/repository"
	"microblog/internal/services"

	"github.com/gin-gonic/gin"
)

const resetRequestMessage = "Check your email for the instructions to reset your password"

type ResetPasswordRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordBody struct {
	Password string `json:"password" binding:"required,min=6"`
}

// ResetPasswordRequest answers the same way whether or not the address is registered.
func (h *Handler) ResetPasswordRequest(c *gin.Context) {
	var req ResetPasswordRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.resetThrottle.Allow(c.Request.Context(), req.Email) {
		h.logger.Warn("Password reset throttled", "ip", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"message": resetRequestMessage})
		return
	}

	user, err := h.identityService.GetByEmail(req.Email)
	switch {
	case err == nil:
		token, err := h.tokenService.IssueResetToken(user.ID, time.Duration(h.cfg.ResetTokenTTL)*time.Second)
		if err != nil {
			h.respondError(c, err)
			return
		}
		h.mailService.SendPasswordResetEmail(user, token, baseURL(c))
		h.auditService.LogAction(&user.ID, services.ActionResetRequest, user.Username, nil, c.ClientIP())
	case errors.Is(err, repository.ErrNotFound):
		// Nothing to send
	default:
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": resetRequestMessage})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	userID, err := h.tokenService.VerifyResetToken(c.Param("token"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req ResetPasswordBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.identityService.SetPassword(userID, req.Password); err != nil {
		// The account went away after the token was issued
		if errors.Is(err, repository.ErrNotFound) {
			err = services.ErrInvalidToken
		}
		h.respondError(c, err)
		return
	}

	h.auditService.LogAction(&userID, services.ActionResetPassword, fmt.Sprint(userID), nil, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"message": "Your password has been reset"})
}

func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
