package handlers

import (
	"net/http"

	"microblog/internal/models"

	"github.com/gin-gonic/gin"
)

type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	AboutMe  string `json:"about_me" binding:"max=140"`
}

func (h *Handler) lookupUser(c *gin.Context) (*models.User, bool) {
	user, err := h.identityService.GetByUsername(c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return user, true
}

func (h *Handler) GetUser(c *gin.Context) {
	user, ok := h.lookupUser(c)
	if !ok {
		return
	}

	followers, err := h.followService.FollowerCount(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	following, err := h.followService.FollowingCount(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := newUserResponse(user)
	resp.Followers = &followers
	resp.Following = &following

	body := gin.H{"user": resp}
	if viewerID, ok := h.resolveUser(c); ok && viewerID != user.ID {
		isFollowing, err := h.followService.IsFollowing(viewerID, user.ID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		body["is_following"] = isFollowing
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) ListUserPosts(c *gin.Context) {
	user, ok := h.lookupUser(c)
	if !ok {
		return
	}

	page, err := h.postService.ListByAuthor(user.ID, pageParam(c), h.cfg.PostsPerPage)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page))
}

func (h *Handler) ListFollowers(c *gin.Context) {
	user, ok := h.lookupUser(c)
	if !ok {
		return
	}

	users, err := h.followService.Followers(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": newUserList(users)})
}

func (h *Handler) ListFollowing(c *gin.Context) {
	user, ok := h.lookupUser(c)
	if !ok {
		return
	}

	users, err := h.followService.Following(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": newUserList(users)})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.identityService.UpdateProfile(currentUserID(c), req.Username, req.AboutMe)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

func (h *Handler) FollowUser(c *gin.Context) {
	target, ok := h.lookupUser(c)
	if !ok {
		return
	}
	userID := currentUserID(c)
	if target.ID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot follow yourself"})
		return
	}

	if err := h.followService.Follow(userID, target.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You are following " + target.Username})
}

func (h *Handler) UnfollowUser(c *gin.Context) {
	target, ok := h.lookupUser(c)
	if !ok {
		return
	}
	userID := currentUserID(c)
	if target.ID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot unfollow yourself"})
		return
	}

	if err := h.followService.Unfollow(userID, target.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You are not following " + target.Username})
}
