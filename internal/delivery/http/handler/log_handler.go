package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"signit-esign/internal/domain/entity"
	"signit-esign/internal/domain/repository"
)

const maxLogLimit = 200

type LogHandler struct {
	logRepo repository.APILogRepository
	logger  *zap.Logger
}

// NewLogHandler accepts a nil repository when the database is disabled
func NewLogHandler(logRepo repository.APILogRepository, logger *zap.Logger) *LogHandler {
	return &LogHandler{logRepo: logRepo, logger: logger}
}

// GetLogs godoc
// @Summary List SignIt API calls
// @Description Most recent calls made to SignIt, newest first
// @Tags logs
// @Produce json
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} entity.ErrorResponse
// @Router /api/logs [get]
func (h *LogHandler) GetLogs(c *fiber.Ctx) error {
	if h.logRepo == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(
			entity.NewErrorResponse("API log storage is disabled", nil),
		)
	}

	limit := c.QueryInt("limit", 50)
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	logs, err := h.logRepo.FindAll(c.UserContext(), limit)
	if err != nil {
		h.logger.Error("Failed to load API logs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("Failed to load API logs", nil),
		)
	}

	return c.JSON(fiber.Map{"success": true, "data": logs})
}
