package reviews

import (
	"context"
	"errors"
	"strings"

	"fishlink-backend/internal/models"
	"fishlink-backend/internal/notifications"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxCommentLen caps the stored comment length in characters; longer input is
// truncated, not rejected.
const maxCommentLen = 300

// Service manages post-completion reviews between the two order parties.
type Service struct {
	DB            *gorm.DB
	Notifications *notifications.Service
}

type CreateReviewInput struct {
	OrderID    uuid.UUID
	FromUserID uuid.UUID
	Rating     *int
	Comment    string
}

// Create writes one review from a participant of a COMPLETED order to the
// counterparty. A second attempt by the same author on the same order returns
// the existing review with created=false.
func (s *Service) Create(ctx context.Context, in CreateReviewInput) (*models.Review, bool, error) {
	if in.OrderID == uuid.Nil {
		return nil, false, ErrOrderNotFound
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return nil, false, ErrInvalidRating
	}

	var order models.Order
	if err := s.DB.WithContext(ctx).Where("id = ?", in.OrderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrOrderNotFound
		}
		return nil, false, err
	}
	var toUserID uuid.UUID
	switch in.FromUserID {
	case order.RestaurantID:
		toUserID = order.FarmerID
	case order.FarmerID:
		toUserID = order.RestaurantID
	default:
		// Same response as a missing order so outsiders learn nothing.
		return nil, false, ErrOrderNotFound
	}
	if order.Status != models.OrderStatusCompleted {
		return nil, false, ErrOrderNotCompleted
	}

	var comment *string
	if c := strings.TrimSpace(in.Comment); c != "" {
		// Truncation counts characters, not bytes; Khmer comments are
		// multibyte and must never be cut mid-rune.
		if runes := []rune(c); len(runes) > maxCommentLen {
			c = string(runes[:maxCommentLen])
		}
		comment = &c
	}

	review := &models.Review{
		OrderID:    order.ID,
		FromUserID: in.FromUserID,
		ToUserID:   toUserID,
		Rating:     in.Rating,
		Comment:    comment,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return err
		}
		return s.Notifications.CreateTx(tx, toUserID,
			"notifications.reviewReceived.title", "notifications.reviewReceived.body",
			map[string]interface{}{"orderId": order.ID.String()})
	})
	if err != nil {
		if !duplicateKey(err) {
			return nil, false, err
		}
		var existing models.Review
		if err := s.DB.WithContext(ctx).
			Where("order_id = ? AND from_user_id = ?", order.ID, in.FromUserID).
			First(&existing).Error; err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}
	return review, true, nil
}

// ForOrder returns the reviews on an order, visible to its participants only.
func (s *Service) ForOrder(ctx context.Context, orderID, userID uuid.UUID) ([]models.Review, error) {
	var order models.Order
	if err := s.DB.WithContext(ctx).Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.RestaurantID != userID && order.FarmerID != userID {
		return nil, ErrOrderNotFound
	}
	var out []models.Review
	err := s.DB.WithContext(ctx).
		Where("order_id = ?", orderID).Order("created_at ASC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func duplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
