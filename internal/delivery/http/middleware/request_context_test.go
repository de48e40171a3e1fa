package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signit-esign/internal/infrastructure/httpclient"
)

func TestRequestContextCarriesRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New(requestid.Config{Generator: func() string { return "req-42" }}))
	app.Use(RequestContext())

	var seen string
	app.Get("/", func(c *fiber.Ctx) error {
		seen = httpclient.RequestIDFromContext(c.UserContext())
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-42", seen)
}

func TestRequestContextKeepsIncomingID(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(RequestContext())

	var seen string
	app.Get("/", func(c *fiber.Ctx) error {
		seen = httpclient.RequestIDFromContext(c.UserContext())
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "from-client")

	_, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "from-client", seen)
}
