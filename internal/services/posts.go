package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"microblog/internal/models"
	"microblog/internal/repository"

	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var (
	ErrEmptyPost   = errors.New("post body is empty")
	ErrPostTooLong = errors.New("post body must be at most 140 characters")
)

// Page is one slice of a reverse-chronological post listing.
type Page struct {
	Items   []models.Post `json:"items"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	HasNext bool          `json:"has_next"`
}

// paginate fetches one extra row to learn whether another page exists.
func paginate(query *gorm.DB, page, perPage int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}

	var posts []models.Post
	err := query.Preload("Author").
		Offset((page - 1) * perPage).
		Limit(perPage + 1).
		Find(&posts).Error
	if err != nil {
		return Page{}, err
	}

	result := Page{Page: page, PerPage: perPage, Items: posts}
	if len(posts) > perPage {
		result.Items = posts[:perPage]
		result.HasNext = true
	}
	if result.Items == nil {
		result.Items = []models.Post{}
	}
	return result, nil
}

type PostService struct {
	db           *gorm.DB
	auditService *AuditService
	now          func() time.Time
}

func NewPostService(db *gorm.DB, auditService *AuditService) *PostService {
	return &PostService{
		db:           db,
		auditService: auditService,
		now:          time.Now,
	}
}

// Create stores a post for userID. lang is an optional BCP 47 tag reduced to its base language.
func (s *PostService) Create(userID uint, body, lang string) (*models.Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyPost
	}
	if utf8.RuneCountInString(body) > models.MaxPostLength {
		return nil, ErrPostTooLong
	}

	post := models.Post{
		Body:      body,
		Timestamp: s.now().UTC(),
		UserID:    userID,
		Language:  NormalizeLanguage(lang),
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", repository.Classify(err))
	}

	s.auditService.LogAction(&userID, ActionPost, fmt.Sprint(post.ID), nil, "")
	return &post, nil
}

func (s *PostService) Get(postID uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.Preload("Author").First(&post, postID).Error; err != nil {
		return nil, repository.Classify(err)
	}
	return &post, nil
}

// ListByAuthor returns a user's own posts, newest first.
func (s *PostService) ListByAuthor(userID uint, page, perPage int) (Page, error) {
	query := s.db.Model(&models.Post{}).
		Where("user_id = ?", userID).
		Order("timestamp DESC, id DESC")
	return paginate(query, page, perPage)
}

// Explore returns every post, newest first.
func (s *PostService) Explore(page, perPage int) (Page, error) {
	query := s.db.Model(&models.Post{}).Order("timestamp DESC, id DESC")
	return paginate(query, page, perPage)
}

// NormalizeLanguage reduces a tag such as "en-GB" to "en". Unparseable tags become "".
func NormalizeLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	base, confidence := parsed.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}
