package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"signit-esign/internal/domain/entity"
	"signit-esign/internal/infrastructure/database"
	"signit-esign/internal/infrastructure/redis"
)

const (
	version      = "1.0.0"
	checkTimeout = 2 * time.Second
)

type HealthHandler struct {
	redisClient *redis.RedisClient
	db          *database.Database
}

// NewHealthHandler accepts nil backends; disabled ones are reported as such
func NewHealthHandler(redisClient *redis.RedisClient, db *database.Database) *HealthHandler {
	return &HealthHandler{redisClient: redisClient, db: db}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks"`
}

// Root godoc
// @Summary API root
// @Tags health
// @Produce json
// @Success 200 {object} entity.MessageResponse
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(entity.NewMessageResponse("API is running"))
}

// Health godoc
// @Summary Health check
// @Description Check if the service and its optional backends are healthy
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), checkTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   version,
		Checks: map[string]string{
			"redis":    "disabled",
			"database": "disabled",
		},
	}

	if h.redisClient != nil {
		resp.Checks["redis"] = "up"
		if err := h.redisClient.Ping(ctx); err != nil {
			resp.Checks["redis"] = "down"
			resp.Status = "degraded"
		}
	}

	if h.db != nil {
		resp.Checks["database"] = "up"
		if err := h.db.DB.PingContext(ctx); err != nil {
			resp.Checks["database"] = "down"
			resp.Status = "degraded"
		}
	}

	status := fiber.StatusOK
	if resp.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(resp)
}
