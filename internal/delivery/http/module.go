package http

import (
	"go.uber.org/fx"

	"signit-esign/internal/delivery/http/handler"
	"signit-esign/internal/delivery/http/middleware"
	"signit-esign/internal/delivery/http/router"
)

var Module = fx.Module("http",
	fx.Provide(
		middleware.NewRateLimiter,
		handler.NewSignatureHandler,
		handler.NewTemplateHandler,
		handler.NewHealthHandler,
		handler.NewLogHandler,
		router.NewRouter,
	),
)
