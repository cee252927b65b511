package profiles

import (
	"context"
	"errors"
	"strings"

	"fishlink-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCoordinates = errors.New("lat and lng must be set together")
)

// Service reads and updates the inline profile on a user account. Orders
// snapshot these fields at creation, so edits here never rewrite history.
type Service struct {
	DB *gorm.DB
}

type UpdateProfileInput struct {
	Name         *string
	EntityName   *string
	Phone        *string
	GoogleMapURL *string
	Province     *string
	District     *string
	Lat          *float64
	Lng          *float64
}

// Get returns the account with its profile fields.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update applies only the fields present in the input. Coordinates move as a
// pair; a lone lat or lng is rejected.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	if (in.Lat == nil) != (in.Lng == nil) {
		return nil, ErrInvalidCoordinates
	}

	updates := map[string]interface{}{}
	setString(updates, "name", in.Name)
	setString(updates, "entity_name", in.EntityName)
	setString(updates, "phone", in.Phone)
	setString(updates, "google_map_url", in.GoogleMapURL)
	setString(updates, "province", in.Province)
	setString(updates, "district", in.District)
	if in.Lat != nil {
		updates["lat"] = *in.Lat
		updates["lng"] = *in.Lng
	}

	if len(updates) > 0 {
		res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrUserNotFound
		}
	}
	return s.Get(ctx, userID)
}

func setString(updates map[string]interface{}, column string, v *string) {
	if v != nil {
		updates[column] = strings.TrimSpace(*v)
	}
}
