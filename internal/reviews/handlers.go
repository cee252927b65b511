package reviews

import (
	"errors"

	"fishlink-backend/internal/middleware"
	"fishlink-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

type createReviewRequest struct {
	OrderID string `json:"order_id"`
	Rating  *int   `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview records the session user's review of their completed order.
func (h *Handlers) CreateReview(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req createReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return response.Error(c, "Invalid order_id", fiber.StatusBadRequest, nil)
	}
	review, created, err := h.Service.Create(c.Context(), CreateReviewInput{
		OrderID:    orderID,
		FromUserID: userID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		return reviewError(c, err)
	}
	if !created {
		return response.Success(c, "Review already created", review, map[string]interface{}{"deduplicated": true})
	}
	return response.SuccessCreated(c, "Review created", review, nil)
}

// GetOrderReviews lists the reviews on one of the session user's orders.
func (h *Handlers) GetOrderReviews(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return response.Error(c, "Invalid order_id", fiber.StatusBadRequest, nil)
	}
	items, err := h.Service.ForOrder(c.Context(), orderID, userID)
	if err != nil {
		return reviewError(c, err)
	}
	return response.Success(c, "Reviews fetched", items, nil)
}

func reviewError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, ErrOrderNotCompleted):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, ErrInvalidRating):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Error(c, "Failed to process review", fiber.StatusInternalServerError, nil)
}
