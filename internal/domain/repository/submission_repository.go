package repository

import (
	"context"
	"errors"

	"signit-esign/internal/domain/entity"
)

// ErrSubmissionNotFound is returned when no submission was recorded for an id
var ErrSubmissionNotFound = errors.New("submission not found")

type SubmissionRepository interface {
	Save(ctx context.Context, submission *entity.Submission) error
	FindByID(ctx context.Context, signatureRequestID string) (*entity.Submission, error)
}
