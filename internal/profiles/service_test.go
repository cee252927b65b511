package profiles

import (
	"context"
	"testing"

	"fishlink-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProfilesTest(t *testing.T) (*Service, *models.User) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	u := &models.User{
		LoginID:      uuid.New().String(),
		PasswordHash: "x",
		Role:         models.RoleRestaurant,
		Name:         "Sok",
		Phone:        "0123",
	}
	require.NoError(t, db.Create(u).Error)
	return &Service{DB: db}, u
}

func strp(s string) *string { return &s }
func fp(v float64) *float64 { return &v }

func TestUpdate_PartialLeavesOtherFields(t *testing.T) {
	svc, u := setupProfilesTest(t)

	got, err := svc.Update(context.Background(), u.ID, UpdateProfileInput{
		Phone:    strp(" 099999999 "),
		Province: strp("Takeo"),
	})
	require.NoError(t, err)
	assert.Equal(t, "099999999", got.Phone)
	assert.Equal(t, "Takeo", got.Province)
	assert.Equal(t, "Sok", got.Name)
	assert.False(t, got.HasLocation())
}

func TestUpdate_CoordinatesMoveAsPair(t *testing.T) {
	svc, u := setupProfilesTest(t)

	_, err := svc.Update(context.Background(), u.ID, UpdateProfileInput{Lat: fp(11.5)})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	got, err := svc.Update(context.Background(), u.ID, UpdateProfileInput{Lat: fp(11.5), Lng: fp(104.9)})
	require.NoError(t, err)
	assert.True(t, got.HasLocation())
	assert.Equal(t, 11.5, *got.Lat)
	assert.Equal(t, 104.9, *got.Lng)
}

func TestUpdate_UnknownUser(t *testing.T) {
	svc, _ := setupProfilesTest(t)
	_, err := svc.Update(context.Background(), uuid.New(), UpdateProfileInput{Name: strp("X")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGet_UnknownUser(t *testing.T) {
	svc, _ := setupProfilesTest(t)
	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
