package auth

import (
	"context"
	"errors"

	"fishlink-backend/internal/middleware"
	"fishlink-backend/internal/models"
	"fishlink-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Handlers struct {
	Service *Service
	Redis   *redis.Client
	Cookie  middleware.SessionConfig
}

type loginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login verifies credentials and rotates the session id before storing the
// user, so a pre-login cookie can never be promoted to an authenticated one.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.Login(c.Context(), req.LoginID, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRole):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, ErrInvalidCredentials):
			return response.Unauthorized(c, err.Error())
		}
		return response.Error(c, "Failed to log in", fiber.StatusInternalServerError, nil)
	}

	sid := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:  user.ID.String(),
		LoginID: user.LoginID,
		Name:    user.Name,
		Role:    user.Role,
	})
	cookie := middleware.SessionCookieConfig(h.Cookie)
	cookie.Value = sid
	c.Cookie(&cookie)

	return response.Success(c, "Logged in", sanitizeUser(user), nil)
}

// Me returns the session user's account.
func (h *Handlers) Me(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var user models.User
	if err := h.Service.DB.WithContext(c.Context()).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Unauthorized(c, "Unauthorized")
		}
		return response.Error(c, "Failed to fetch user", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "User fetched", sanitizeUser(&user), nil)
}

// Logout drops the server-side session and clears the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if sid := middleware.GetSessionID(c); sid != "" && h.Redis != nil {
		h.Redis.Del(context.Background(), middleware.SessionRedisPrefix+sid)
	}
	middleware.DestroySession(c)
	c.Locals("session_id", "")

	cookie := middleware.SessionCookieConfig(h.Cookie)
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out", nil, nil)
}

func sanitizeUser(u *models.User) fiber.Map {
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
	}
}
