package main

import (
	"go.uber.org/fx"

	"signit-esign/internal/config"
	deliveryhttp "signit-esign/internal/delivery/http"
	"signit-esign/internal/infrastructure/database"
	"signit-esign/internal/infrastructure/document"
	"signit-esign/internal/infrastructure/httpclient"
	"signit-esign/internal/infrastructure/logger"
	"signit-esign/internal/infrastructure/oauth2"
	"signit-esign/internal/infrastructure/redis"
	"signit-esign/internal/infrastructure/repository"
	"signit-esign/internal/server"
	"signit-esign/internal/usecase"
)

func main() {
	fx.New(modules()...).Run()
}

func modules() []fx.Option {
	return []fx.Option{
		// Configuration
		config.Module,

		// Infrastructure
		logger.Module,
		database.Module,
		redis.Module,
		oauth2.Module,
		document.Module,
		httpclient.Module,
		repository.Module,

		// Business Logic
		usecase.Module,

		// Delivery
		deliveryhttp.Module,

		// Server
		server.Module,
	}
}
