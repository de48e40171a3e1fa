package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"signit-esign/internal/infrastructure/httpclient"
)

// RequestContext carries the request id into the handler context so provider
// calls are logged under it. Must run after requestid.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
			c.SetUserContext(httpclient.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}
