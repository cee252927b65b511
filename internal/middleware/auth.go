package middleware

import (
	"fishlink-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with the standard
// error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// RequireRole ensures the session user has the given role. 401 when not
// logged in, 403 when logged in as the other side of the marketplace.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := CurrentUser(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if u.Role != role {
			return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}

// CurrentUser parses the session user from Locals.
func CurrentUser(c *fiber.Ctx) (SessionUser, bool) {
	m, ok := c.Locals(userLocal).(map[string]interface{})
	if !ok || m == nil {
		return SessionUser{}, false
	}
	u := SessionUser{
		UserID:  str(m["user_id"]),
		LoginID: str(m["login_id"]),
		Name:    str(m["name"]),
		Role:    str(m["role"]),
	}
	if u.UserID == "" {
		return SessionUser{}, false
	}
	return u, true
}

// CurrentUserID parses the session user's id as a UUID.
func CurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	u, ok := CurrentUser(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(u.UserID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
