package services

import (
	"fmt"
	"time"

	"microblog/internal/models"
	"microblog/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowService maintains the follower graph. Self-follows are not rejected here.
type FollowService struct {
	db           *gorm.DB
	auditService *AuditService
}

func NewFollowService(db *gorm.DB, auditService *AuditService) *FollowService {
	return &FollowService{db: db, auditService: auditService}
}

// Follow is idempotent; the edge's primary key absorbs concurrent duplicates.
func (s *FollowService) Follow(followerID, followedID uint) error {
	edge := models.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  time.Now().UTC(),
	}
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
	if result.Error != nil {
		return fmt.Errorf("follow: %w", repository.Classify(result.Error))
	}
	if result.RowsAffected > 0 {
		s.auditService.LogAction(&followerID, ActionFollow, fmt.Sprint(followedID), nil, "")
	}
	return nil
}

// Unfollow is idempotent; removing a missing edge is a no-op.
func (s *FollowService) Unfollow(followerID, followedID uint) error {
	result := s.db.Where("follower_id = ? AND followed_id = ?", followerID, followedID).Delete(&models.Follow{})
	if result.Error != nil {
		return fmt.Errorf("unfollow: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		s.auditService.LogAction(&followerID, ActionUnfollow, fmt.Sprint(followedID), nil, "")
	}
	return nil
}

func (s *FollowService) IsFollowing(followerID, followedID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *FollowService) FollowerCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&count).Error
	return count, err
}

func (s *FollowService) FollowingCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

// Followers lists the users following userID, ordered by username.
func (s *FollowService) Followers(userID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	return users, err
}

// Following lists the users userID follows, ordered by username.
func (s *FollowService) Following(userID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	return users, err
}
