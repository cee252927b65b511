package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fishlink-backend/internal/expiration"
	"fishlink-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ordersApp mounts the order routes behind a fake session for one user.
func ordersApp(svc *Service, user *models.User) *fiber.App {
	h := &Handlers{Service: svc}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id":  user.ID.String(),
			"login_id": user.LoginID,
			"name":     user.Name,
			"role":     user.Role,
		})
		return c.Next()
	})
	app.Post("/api/v1/orders/create-order", h.CreateOrder)
	app.Post("/api/v1/orders/accept-order", h.AcceptOrder)
	return app
}

func postOrderJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

// A malformed requested date is a validation failure, not a server error.
func TestCreateOrderHandler_BadSelectedDateReturns400(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, expiration.Location())
	svc, db := setupOrdersTest(t, now)
	restaurant, farmer := seedParties(t, db)
	listing := seedFixedListing(t, db, farmer.ID)
	app := ordersApp(svc, restaurant)

	resp := postOrderJSON(t, app, "/api/v1/orders/create-order", fiber.Map{
		"request_id":        uuid.New().String(),
		"listing_id":        listing.ID.String(),
		"quantity_kg":       10,
		"size_request_text": "4-5 head/kg",
		"time_band":         models.TimeBandMorning,
		"selected_date":     "31/08/2026",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "error", body["status"])
}

// A transition against an order the actor does not own maps to 403.
func TestAcceptOrderHandler_WrongOwnerReturns403(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, expiration.Location())
	svc, db := setupOrdersTest(t, now)
	restaurant, farmer := seedParties(t, db)
	listing := seedFixedListing(t, db, farmer.ID)
	order, _, _, err := svc.CreateOrder(context.Background(), baseInput(restaurant.ID, listing.ID))
	require.NoError(t, err)

	other := seedUser(t, db, models.RoleFarmer, f64(11.4), f64(104.9))
	app := ordersApp(svc, other)

	resp := postOrderJSON(t, app, "/api/v1/orders/accept-order", fiber.Map{
		"order_id": order.ID.String(),
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
