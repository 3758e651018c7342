package handlers

import (
	"log/slog"

	"microblog/internal/config"
	"microblog/internal/services"

	"github.com/redis/go-redis/v9"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// Handler carries every collaborator the HTTP layer needs. It is built once in main.
type Handler struct {
	cfg                config.Config
	logger             *slog.Logger
	db                 *gorm.DB
	rdb                *redis.Client
	identityService    *services.IdentityService
	followService      *services.FollowService
	postService        *services.PostService
	feedService        *services.FeedService
	tokenService       *services.TokenService
	mailService        *services.MailService
	translationService *services.TranslationService
	auditService       *services.AuditService
	resetThrottle      *services.ResetThrottle
	metrics            *Metrics
	matcher            language.Matcher
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	db *gorm.DB,
	rdb *redis.Client,
	identityService *services.IdentityService,
	followService *services.FollowService,
	postService *services.PostService,
	feedService *services.FeedService,
	tokenService *services.TokenService,
	mailService *services.MailService,
	translationService *services.TranslationService,
	auditService *services.AuditService,
	resetThrottle *services.ResetThrottle,
) *Handler {
	var tags []language.Tag
	for _, l := range cfg.LanguageList() {
		if tag, err := language.Parse(l); err == nil {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.English}
	}

	return &Handler{
		cfg:                cfg,
		logger:             logger,
		db:                 db,
		rdb:                rdb,
		identityService:    identityService,
		followService:      followService,
		postService:        postService,
		feedService:        feedService,
		tokenService:       tokenService,
		mailService:        mailService,
		translationService: translationService,
		auditService:       auditService,
		resetThrottle:      resetThrottle,
		metrics:            NewMetrics(),
		matcher:            language.NewMatcher(tags),
	}
}
