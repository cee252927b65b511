package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tracingApp() *fiber.App {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString(GetRequestID(c))
	})
	return app
}

func TestTracing_GeneratesRequestID(t *testing.T) {
	app := tracingApp()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)

	id := resp.Header.Get("X-Request-Id")
	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr)
}

// A well-formed client-supplied id is echoed back; garbage is replaced.
func TestTracing_KeepsValidInboundID(t *testing.T) {
	app := tracingApp()

	inbound := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", inbound)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, inbound, resp.Header.Get("X-Request-Id"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "not-a-uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	got := resp.Header.Get("X-Request-Id")
	assert.NotEqual(t, "not-a-uuid", got)
	_, parseErr := uuid.Parse(got)
	assert.NoError(t, parseErr)
}
