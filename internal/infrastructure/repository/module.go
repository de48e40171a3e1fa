package repository

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"signit-esign/internal/domain/repository"
	"signit-esign/internal/infrastructure/database"
	"signit-esign/internal/infrastructure/httpclient"
)

// provideAPILogRepository returns a nil interface when the database is
// disabled so callers can check for it directly
func provideAPILogRepository(db *database.Database, logger *zap.Logger) repository.APILogRepository {
	if db == nil {
		return nil
	}
	return NewAPILogRepository(db, logger)
}

// provideAPILogSaver exposes the log repository to the HTTP client
func provideAPILogSaver(repo repository.APILogRepository) httpclient.APILogSaver {
	if repo == nil {
		return nil
	}
	return repo
}

var Module = fx.Module("repository",
	fx.Provide(NewSignatureRepository),
	fx.Provide(NewDocumentRepository),
	fx.Provide(NewSubmissionRepository),
	fx.Provide(provideAPILogRepository),
	fx.Provide(provideAPILogSaver),
)
