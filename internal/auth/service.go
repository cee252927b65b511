package auth

import (
	"context"
	"errors"
	"strings"

	"fishlink-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service authenticates marketplace accounts.
type Service struct {
	DB *gorm.DB
}

// Login verifies login id, password and the side of the marketplace the
// client claims to be on. A role mismatch fails the same way as a bad
// password so probing accounts reveals nothing.
func (s *Service) Login(ctx context.Context, loginID, password, role string) (*models.User, error) {
	loginID = strings.TrimSpace(loginID)
	if loginID == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	if !models.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	var user models.User
	if err := s.DB.WithContext(ctx).Where("login_id = ?", loginID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Role != role {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// HashPassword is the inverse side of Login, used by seeding and tests.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
