package repository

import (
	"context"

	"signit-esign/internal/domain/entity"
)

// APILogRepository stores the audit trail of calls made to SignIt
type APILogRepository interface {
	Save(ctx context.Context, log *entity.APILog) error
	FindAll(ctx context.Context, limit int) ([]entity.APILog, error)
}
