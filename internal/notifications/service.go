package notifications

import (
	"context"
	"encoding/json"

	"fishlink-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service persists notification records. Records are append-only: state
// transitions create them, the client renders them from template keys.
type Service struct {
	DB *gorm.DB
}

// Create appends a notification for a user.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, titleKey, bodyKey string, params map[string]interface{}) error {
	return s.CreateTx(s.DB.WithContext(ctx), userID, titleKey, bodyKey, params)
}

// CreateTx is Create on an existing transaction handle, so transitions can
// emit notifications atomically with the status write.
func (s *Service) CreateTx(tx *gorm.DB, userID uuid.UUID, titleKey, bodyKey string, params map[string]interface{}) error {
	n := &models.Notification{
		UserID:   userID,
		TitleKey: titleKey,
		BodyKey:  bodyKey,
	}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return err
		}
		n.Params = datatypes.JSON(b)
	}
	return tx.Create(n).Error
}

// ListForUser returns a user's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	var out []models.Notification
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
