package services

import (
	"microblog/internal/models"

	"gorm.io/gorm"
)

// FeedService composes a user's timeline from their own posts and the posts of everyone they follow.
type FeedService struct {
	db *gorm.DB
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db}
}

// feedQuery joins each post to its author's followers, keeps rows where the author is the user or
// the matching follower is the user, and groups back to one row per post. Equal timestamps are
// ordered by id, newest first.
func (s *FeedService) feedQuery(userID uint) *gorm.DB {
	return s.db.Model(&models.Post{}).
		Select("posts.*").
		Joins("LEFT JOIN follows ON follows.followed_id = posts.user_id").
		Where("follows.follower_id = ? OR posts.user_id = ?", userID, userID).
		Group("posts.id").
		Order("posts.timestamp DESC, posts.id DESC")
}

// Feed returns the complete timeline. It is empty, not an error, for a user with no posts or follows.
func (s *FeedService) Feed(userID uint) ([]models.Post, error) {
	posts := []models.Post{}
	if err := s.feedQuery(userID).Preload("Author").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *FeedService) FeedPage(userID uint, page, perPage int) (Page, error) {
	return paginate(s.feedQuery(userID), page, perPage)
}
