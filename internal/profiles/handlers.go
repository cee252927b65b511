package profiles

import (
	"errors"

	"fishlink-backend/internal/middleware"
	"fishlink-backend/internal/models"
	"fishlink-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

type updateProfileRequest struct {
	Name         *string  `json:"name"`
	EntityName   *string  `json:"entity_name"`
	Phone        *string  `json:"phone"`
	GoogleMapURL *string  `json:"google_map_url"`
	Province     *string  `json:"province"`
	District     *string  `json:"district"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
}

// GetMyProfile returns the session user's profile.
func (h *Handlers) GetMyProfile(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	user, err := h.Service.Get(c.Context(), userID)
	if err != nil {
		return profileError(c, err)
	}
	return response.Success(c, "Profile fetched", profileView(user), nil)
}

// UpdateMyProfile applies a partial update to the session user's profile.
func (h *Handlers) UpdateMyProfile(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.Update(c.Context(), userID, UpdateProfileInput{
		Name:         req.Name,
		EntityName:   req.EntityName,
		Phone:        req.Phone,
		GoogleMapURL: req.GoogleMapURL,
		Province:     req.Province,
		District:     req.District,
		Lat:          req.Lat,
		Lng:          req.Lng,
	})
	if err != nil {
		return profileError(c, err)
	}
	return response.Success(c, "Profile updated", profileView(user), nil)
}

func profileView(u *models.User) fiber.Map {
	return fiber.Map{
		"id":             u.ID,
		"login_id":       u.LoginID,
		"role":           u.Role,
		"name":           u.Name,
		"entity_name":    u.EntityName,
		"phone":          u.Phone,
		"google_map_url": u.GoogleMapURL,
		"province":       u.Province,
		"district":       u.District,
		"lat":            u.Lat,
		"lng":            u.Lng,
		"has_location":   u.HasLocation(),
	}
}

func profileError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, ErrInvalidCoordinates):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Error(c, "Failed to process profile", fiber.StatusInternalServerError, nil)
}
