package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"signit-esign/internal/config"
	"signit-esign/internal/delivery/http/handler"
	"signit-esign/internal/delivery/http/middleware"
	"signit-esign/internal/domain/apperr"
	"signit-esign/internal/domain/entity"
)

type Router struct {
	app              *fiber.App
	config           *config.Config
	logger           *zap.Logger
	rateLimiter      *middleware.RateLimiter
	signatureHandler *handler.SignatureHandler
	templateHandler  *handler.TemplateHandler
	healthHandler    *handler.HealthHandler
	logHandler       *handler.LogHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	rateLimiter *middleware.RateLimiter,
	signatureHandler *handler.SignatureHandler,
	templateHandler *handler.TemplateHandler,
	healthHandler *handler.HealthHandler,
	logHandler *handler.LogHandler,
) *Router {
	bodyLimit := cfg.App.BodyLimitMB * 1024 * 1024
	if bodyLimit <= 0 {
		bodyLimit = fiber.DefaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    bodyLimit,
		ErrorHandler: newErrorHandler(cfg, logger),
	})

	return &Router{
		app:              app,
		config:           cfg,
		logger:           logger,
		rateLimiter:      rateLimiter,
		signatureHandler: signatureHandler,
		templateHandler:  templateHandler,
		healthHandler:    healthHandler,
		logHandler:       logHandler,
	}
}

func (r *Router) Setup() *fiber.App {
	// Middleware
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: r.config.IsDevelopment(),
	}))
	r.app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	r.app.Use(middleware.RequestContext())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.config.AllowedOrigins(),
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		AllowCredentials: true,
	}))

	if r.config.IsDevelopment() {
		r.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		}))
	}

	r.app.Get("/", r.healthHandler.Root)

	// Health check route
	r.app.Get("/health", r.healthHandler.Health)

	api := r.app.Group("/api", r.rateLimiter.Handler())
	{
		signatures := api.Group("/signatures")
		{
			signatures.Get("", r.signatureHandler.ListSignatures)
			signatures.Post("/create", r.signatureHandler.CreateSignature)
			signatures.Get("/:id", r.signatureHandler.GetSignature)
			signatures.Patch("/:id/status", r.signatureHandler.UpdateStatus)
			signatures.Get("/:id/submission", r.signatureHandler.GetSubmission)
			signatures.Get("/:id/signatories/:signatoryId/signing-link", r.signatureHandler.GetSigningLink)
		}

		api.Get("/templates", r.templateHandler.ListTemplates)
		api.Get("/logs", r.logHandler.GetLogs)
	}

	// Unmatched routes
	r.app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(entity.NewErrorResponse("Route not found", nil))
	})

	return r.app
}

func (r *Router) GetApp() *fiber.App {
	return r.app
}

// newErrorHandler renders every error as {status, message}. Provider
// rejections of create requests are passed through as {success:false, error}.
func newErrorHandler(cfg *config.Config, log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if appErr, ok := apperr.From(err); ok {
			if appErr.Kind == apperr.KindProvider {
				return c.Status(appErr.StatusCode).JSON(entity.CreateFailureResponse{
					Success: false,
					Error:   appErr.Payload,
				})
			}

			if appErr.StatusCode >= fiber.StatusInternalServerError {
				log.Error("Request failed",
					zap.String("path", c.Path()),
					zap.Any("request_id", c.Locals(requestid.ConfigDefault.ContextKey)),
					zap.Error(err),
				)
			}

			return c.Status(appErr.StatusCode).JSON(entity.NewErrorResponse(appErr.Message, details(cfg, err)))
		}

		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			log.Error("Unhandled error",
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(entity.NewErrorResponse(message, details(cfg, err)))
	}
}

// details exposes the cause chain in development only
func details(cfg *config.Config, err error) any {
	if !cfg.IsDevelopment() {
		return nil
	}
	return err.Error()
}
