package handlers

import (
	"microblog/internal/middleware"
	"microblog/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func (h *Handler) SetupRouter(rateLimiter *services.KeyedRateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), h.Recovery())

	if err := middleware.ConfigureClientIP(r, h.cfg.TrustedProxyList(), h.cfg.BehindCloudflare); err != nil {
		h.logger.Error("Invalid TRUSTED_PROXIES, ignoring forwarding headers", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	// Middleware
	r.Use(middleware.RequestID())
	r.Use(h.metrics.Middleware())
	if rateLimiter != nil {
		r.Use(middleware.RateLimit(rateLimiter, h.metrics.recordRateLimitHit))
	}
	r.Use(middleware.Locale(h.matcher))

	store := cookie.NewStore([]byte(h.cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   h.cfg.AppEnv == "production",
	})
	r.Use(sessions.Sessions("microblog_session", store))

	// Routes
	r.GET("/health", h.Health)
	r.GET("/metrics", h.metrics.Handler())

	// Public Routes
	r.POST("/api/register", h.RegisterUser)
	r.POST("/api/login", h.LoginUser)
	r.POST("/logout", h.LogoutUser)
	r.GET("/api/users/:username", h.GetUser)
	r.GET("/api/users/:username/posts", h.ListUserPosts)
	r.GET("/api/users/:username/followers", h.ListFollowers)
	r.GET("/api/users/:username/following", h.ListFollowing)
	r.GET("/api/explore", h.Explore)
	r.GET("/api/posts/:id", h.GetPost)
	r.POST("/api/reset_password_request", h.ResetPasswordRequest)
	r.POST("/api/reset_password/:token", h.ResetPassword)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(h.AuthRequired())
	{
		authorized.GET("/api/feed", h.Feed)
		authorized.POST("/api/posts", h.CreatePost)
		authorized.PUT("/api/profile", h.UpdateProfile)
		authorized.POST("/api/users/:username/follow", h.FollowUser)
		authorized.POST("/api/users/:username/unfollow", h.UnfollowUser)
		authorized.POST("/api/translate", h.Translate)
		authorized.POST("/api/v1/auth/apikey", h.GenerateNewAPIKey)
		authorized.DELETE("/api/v1/auth/account", h.DeleteAccount)
	}

	return r
}
