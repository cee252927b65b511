package reviews

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"fishlink-backend/internal/models"
	"fishlink-backend/internal/notifications"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupReviewsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.Review{}, &models.Notification{}))
	return &Service{DB: db, Notifications: &notifications.Service{DB: db}}, db
}

func seedOrder(t *testing.T, db *gorm.DB, status string) *models.Order {
	o := &models.Order{
		RequestID:       uuid.New().String(),
		ListingID:       uuid.New(),
		RestaurantID:    uuid.New(),
		FarmerID:        uuid.New(),
		QuantityKg:      10,
		SizeRequestText: "4-5 head/kg",
		TimeBand:        models.TimeBandMorning,
		Status:          status,
		ExpiresAt:       time.Now().Add(time.Hour),
		RequestedDate:   "2026-08-31",
		PaymentStatus:   models.PaymentStatusUnpaid,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func intp(v int) *int { return &v }

func TestCreate_TargetsCounterparty(t *testing.T) {
	svc, db := setupReviewsTest(t)
	order := seedOrder(t, db, models.OrderStatusCompleted)

	review, created, err := svc.Create(context.Background(), CreateReviewInput{
		OrderID:    order.ID,
		FromUserID: order.RestaurantID,
		Rating:     intp(5),
		Comment:    "fresh fish",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, order.FarmerID, review.ToUserID)
	require.NotNil(t, review.Comment)
	assert.Equal(t, "fresh fish", *review.Comment)

	// The reviewed party gets notified.
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", order.FarmerID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The farmer reviews back toward the restaurant.
	back, created, err := svc.Create(context.Background(), CreateReviewInput{
		OrderID:    order.ID,
		FromUserID: order.FarmerID,
		Rating:     intp(4),
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, order.RestaurantID, back.ToUserID)
}

func TestCreate_OncePerAuthor(t *testing.T) {
	svc, db := setupReviewsTest(t)
	order := seedOrder(t, db, models.OrderStatusCompleted)

	first, created, err := svc.Create(context.Background(), CreateReviewInput{
		OrderID: order.ID, FromUserID: order.RestaurantID, Rating: intp(5),
	})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.Create(context.Background(), CreateReviewInput{
		OrderID: order.ID, FromUserID: order.RestaurantID, Rating: intp(1),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Review{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreate_Guards(t *testing.T) {
	svc, db := setupReviewsTest(t)

	pending := seedOrder(t, db, models.OrderStatusDelivering)
	_, _, err := svc.Create(context.Background(), CreateReviewInput{
		OrderID: pending.ID, FromUserID: pending.RestaurantID,
	})
	assert.ErrorIs(t, err, ErrOrderNotCompleted)

	done := seedOrder(t, db, models.OrderStatusCompleted)
	_, _, err = svc.Create(context.Background(), CreateReviewInput{
		OrderID: done.ID, FromUserID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, _, err = svc.Create(context.Background(), CreateReviewInput{
		OrderID: done.ID, FromUserID: done.RestaurantID, Rating: intp(6),
	})
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, _, err = svc.Create(context.Background(), CreateReviewInput{
		OrderID: uuid.New(), FromUserID: done.RestaurantID,
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCreate_TruncatesLongComment(t *testing.T) {
	svc, db := setupReviewsTest(t)
	order := seedOrder(t, db, models.OrderStatusCompleted)

	review, _, err := svc.Create(context.Background(), CreateReviewInput{
		OrderID:    order.ID,
		FromUserID: order.RestaurantID,
		Comment:    strings.Repeat("a", 500),
	})
	require.NoError(t, err)
	require.NotNil(t, review.Comment)
	assert.Len(t, *review.Comment, 300)
	assert.Nil(t, review.Rating)
}

// Truncation counts characters, so multibyte Khmer text is cut on a rune
// boundary and stays valid UTF-8.
func TestCreate_TruncatesMultibyteCommentOnRuneBoundary(t *testing.T) {
	svc, db := setupReviewsTest(t)
	order := seedOrder(t, db, models.OrderStatusCompleted)

	review, _, err := svc.Create(context.Background(), CreateReviewInput{
		OrderID:    order.ID,
		FromUserID: order.RestaurantID,
		Comment:    strings.Repeat("a", 299) + strings.Repeat("ខ", 5),
	})
	require.NoError(t, err)
	require.NotNil(t, review.Comment)
	assert.True(t, utf8.ValidString(*review.Comment))
	assert.Equal(t, 300, utf8.RuneCountInString(*review.Comment))
	assert.Equal(t, strings.Repeat("a", 299)+"ខ", *review.Comment)

	// A short Khmer comment is stored untouched.
	other := seedOrder(t, db, models.OrderStatusCompleted)
	review, _, err = svc.Create(context.Background(), CreateReviewInput{
		OrderID:    other.ID,
		FromUserID: other.RestaurantID,
		Comment:    "ត្រីស្រស់ណាស់",
	})
	require.NoError(t, err)
	require.NotNil(t, review.Comment)
	assert.Equal(t, "ត្រីស្រស់ណាស់", *review.Comment)
}

func TestForOrder_ParticipantsOnly(t *testing.T) {
	svc, db := setupReviewsTest(t)
	order := seedOrder(t, db, models.OrderStatusCompleted)

	_, _, err := svc.Create(context.Background(), CreateReviewInput{
		OrderID: order.ID, FromUserID: order.RestaurantID, Rating: intp(5),
	})
	require.NoError(t, err)

	items, err := svc.ForOrder(context.Background(), order.ID, order.FarmerID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.ForOrder(context.Background(), order.ID, uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
