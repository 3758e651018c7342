package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/services"
	"microblog/pkg/utils"

	"github.com/gin-gonic/gin"
)

const avatarSize = 128

type UserResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	AboutMe   string     `json:"about_me,omitempty"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	Avatar    string     `json:"avatar"`
	Followers *int64     `json:"followers,omitempty"`
	Following *int64     `json:"following,omitempty"`
}

type PostResponse struct {
	ID        uint         `json:"id"`
	Body      string       `json:"body"`
	Timestamp time.Time    `json:"timestamp"`
	Language  string       `json:"language,omitempty"`
	Author    UserResponse `json:"author"`
}

type PageResponse struct {
	Items   []PostResponse `json:"items"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	HasNext bool           `json:"has_next"`
}

func newUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:       u.ID,
		Username: u.Username,
		LastSeen: u.LastSeen,
		Avatar:   utils.AvatarURL(u.Email, avatarSize),
	}
	if u.AboutMe != nil {
		resp.AboutMe = *u.AboutMe
	}
	return resp
}

func newPostResponse(p *models.Post) PostResponse {
	resp := PostResponse{
		ID:        p.ID,
		Body:      p.Body,
		Timestamp: p.Timestamp,
		Language:  p.Language,
	}
	if p.Author != nil {
		resp.Author = newUserResponse(p.Author)
	}
	return resp
}

func newPostList(posts []models.Post) []PostResponse {
	items := make([]PostResponse, 0, len(posts))
	for i := range posts {
		items = append(items, newPostResponse(&posts[i]))
	}
	return items
}

func newPageResponse(p services.Page) PageResponse {
	return PageResponse{
		Items:   newPostList(p.Items),
		Page:    p.Page,
		PerPage: p.PerPage,
		HasNext: p.HasNext,
	}
}

func newUserList(users []models.User) []UserResponse {
	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, newUserResponse(&users[i]))
	}
	return items
}

// pageParam reads ?page=N, defaulting to 1.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// respondError maps store and service errors onto status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, repository.ErrDuplicateKey):
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
	case errors.Is(err, services.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
	case errors.Is(err, services.ErrEmptyPost),
		errors.Is(err, services.ErrPostTooLong),
		errors.Is(err, services.ErrMissingIdentity),
		errors.Is(err, services.ErrAboutMeTooLong),
		errors.Is(err, services.ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrServiceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service unavailable"})
	default:
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "request_id", c.GetString("request_id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *Handler) Health(c *gin.Context) {
	status := gin.H{"status": "healthy"}
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
		return
	}
	if h.rdb != nil {
		if err := h.rdb.Ping(c.Request.Context()).Err(); err != nil {
			status["redis"] = "unreachable"
		} else {
			status["redis"] = "ok"
		}
	}
	c.JSON(http.StatusOK, status)
}
