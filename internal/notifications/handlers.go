package notifications

import (
	"fishlink-backend/internal/middleware"
	"fishlink-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// GetNotifications returns the session user's notifications, newest first.
func (h *Handlers) GetNotifications(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.Service.ListForUser(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Failed to fetch notifications", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Notifications fetched", items, nil)
}
