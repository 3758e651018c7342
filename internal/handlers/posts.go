package handlers

import (
	"net/http"
	"strconv"

	"microblog/internal/repository"
	"microblog/internal/services"

	"github.com/gin-gonic/gin"
)

type CreatePostRequest struct {
	Body     string `json:"body" binding:"required"`
	Language string `json:"language"`
}

type TranslateRequest struct {
	Text           string `json:"text" binding:"required"`
	SourceLanguage string `json:"source_language" binding:"required"`
	DestLanguage   string `json:"dest_language"`
}

func (h *Handler) Explore(c *gin.Context) {
	page, err := h.postService.Explore(pageParam(c), h.cfg.PostsPerPage)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page))
}

func (h *Handler) GetPost(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.respondError(c, repository.ErrNotFound)
		return
	}

	post, err := h.postService.Get(uint(id))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostResponse(post))
}

func (h *Handler) Feed(c *gin.Context) {
	page, err := h.feedService.FeedPage(currentUserID(c), pageParam(c), h.cfg.PostsPerPage)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page))
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postService.Create(currentUserID(c), req.Body, req.Language)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.postsCreated.Inc()

	created, err := h.postService.Get(post.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPostResponse(created))
}

// Translate defaults the destination to the negotiated response locale.
func (h *Handler) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dest := services.NormalizeLanguage(req.DestLanguage)
	if dest == "" {
		dest = c.GetString("locale")
	}
	text := h.translationService.Translate(c.Request.Context(), req.Text, services.NormalizeLanguage(req.SourceLanguage), dest)
	c.JSON(http.StatusOK, gin.H{"text": text})
}
