package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/pkg/utils"

	"gorm.io/gorm"
)

const (
	maxAboutMeLength = 140
	// bcrypt only looks at the first 72 bytes and refuses longer input
	maxPasswordBytes = 72
)

var (
	ErrMissingIdentity    = errors.New("username and email are required")
	ErrAboutMeTooLong     = errors.New("about me must be at most 140 characters")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

// IdentityService owns user records and their credentials.
type IdentityService struct {
	db           *gorm.DB
	auditService *AuditService
	hasher       func(string) (string, error)
}

func NewIdentityService(db *gorm.DB, auditService *AuditService) *IdentityService {
	return &IdentityService{
		db:           db,
		auditService: auditService,
		hasher:       utils.HashPassword,
	}
}

// Create registers a user. An empty password leaves the hash unset.
func (s *IdentityService) Create(username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, ErrMissingIdentity
	}

	// Friendlier fast path; the unique indexes still decide under concurrency.
	var existing models.User
	err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		return nil, repository.ErrDuplicateKey
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := models.User{
		Username:  username,
		Email:     email,
		APIKey:    utils.GenerateAPIKey(),
		CreatedAt: time.Now().UTC(),
	}
	if len(password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	if password != "" {
		hash, err := s.hasher(password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = &hash
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, repository.Classify(err)
	}

	s.auditService.LogAction(&user.ID, ActionRegister, user.Username, nil, "")
	return &user, nil
}

func (s *IdentityService) GetByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, repository.Classify(err)
	}
	return &user, nil
}

func (s *IdentityService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, repository.Classify(err)
	}
	return &user, nil
}

func (s *IdentityService) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.TrimSpace(email)).First(&user).Error; err != nil {
		return nil, repository.Classify(err)
	}
	return &user, nil
}

func (s *IdentityService) GetByAPIKey(apiKey string) (*models.User, error) {
	if apiKey == "" {
		return nil, repository.ErrNotFound
	}
	var user models.User
	if err := s.db.Where("api_key = ?", apiKey).First(&user).Error; err != nil {
		return nil, repository.Classify(err)
	}
	return &user, nil
}

// SetPassword replaces the stored hash.
func (s *IdentityService) SetPassword(userID uint, password string) error {
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	hash, err := s.hasher(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CheckPassword is false for unknown users and for users without a password.
func (s *IdentityService) CheckPassword(userID uint, password string) bool {
	user, err := s.GetByID(userID)
	if err != nil {
		return false
	}
	return PasswordMatches(user, password)
}

func PasswordMatches(user *models.User, password string) bool {
	if user == nil || user.PasswordHash == nil {
		return false
	}
	return utils.CheckPasswordHash(password, *user.PasswordHash)
}

// Authenticate accepts either the username or the email as login.
func (s *IdentityService) Authenticate(login, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ? OR email = ?", login, login).First(&user).Error
	if err != nil {
		return nil, repository.Classify(err)
	}
	if !PasswordMatches(&user, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// UpdateProfile changes the username and bio. An empty aboutMe clears the bio.
func (s *IdentityService) UpdateProfile(userID uint, username, aboutMe string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrMissingIdentity
	}
	if utf8.RuneCountInString(aboutMe) > maxAboutMeLength {
		return nil, ErrAboutMeTooLong
	}

	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"username": username, "about_me": nil}
	if aboutMe != "" {
		updates["about_me"] = aboutMe
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, repository.Classify(err)
	}
	return s.GetByID(userID)
}

func (s *IdentityService) TouchLastSeen(userID uint, at time.Time) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).Update("last_seen", at.UTC()).Error
}

func (s *IdentityService) RotateAPIKey(userID uint) (string, error) {
	newKey := utils.GenerateAPIKey()
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("api_key", newKey)
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", repository.ErrNotFound
	}
	return newKey, nil
}

// Delete removes the user with their posts and follow edges in one transaction.
func (s *IdentityService) Delete(userID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower_id = ? OR followed_id = ?", userID, userID).Delete(&models.Follow{}).Error; err != nil {
			return fmt.Errorf("delete follows: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
			return fmt.Errorf("delete posts: %w", err)
		}
		result := tx.Delete(&models.User{}, userID)
		if result.Error != nil {
			return fmt.Errorf("delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.auditService.LogAction(&userID, ActionDeleteAccount, fmt.Sprint(userID), nil, "")
	return nil
}
