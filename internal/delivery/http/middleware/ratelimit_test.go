package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"signit-esign/internal/config"
)

func newLimitedApp(rl *RateLimiter) *fiber.App {
	app := fiber.New()
	app.Use(rl.Handler())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func get(t *testing.T, app *fiber.App) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	return resp
}

func TestRateLimiterRejectsOverBurst(t *testing.T) {
	rl := newRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2}, zap.NewNop())
	app := newLimitedApp(rl)

	assert.Equal(t, http.StatusOK, get(t, app).StatusCode)
	assert.Equal(t, http.StatusOK, get(t, app).StatusCode)

	resp := get(t, app)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := newRateLimiter(config.RateLimitConfig{Enabled: false, RPS: 1, Burst: 1}, zap.NewNop())
	app := newLimitedApp(rl)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(t, app).StatusCode)
	}
	assert.Empty(t, rl.visitors)
}

func TestRateLimiterZeroRPSDisables(t *testing.T) {
	rl := newRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 0, Burst: 1}, zap.NewNop())
	assert.False(t, rl.enabled)
}

func TestEvictStaleVisitors(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 5, Burst: 5}, zap.NewNop())
	rl.now = func() time.Time { return now }

	rl.getVisitor("10.0.0.1")
	now = now.Add(2 * time.Minute)
	rl.getVisitor("10.0.0.2")

	now = now.Add(2 * time.Minute)
	rl.evictStale()

	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}
