package repository

import (
	"context"

	"signit-esign/internal/domain/entity"
)

type DocumentRepository interface {
	// UploadDocument registers a PDF with SignIt and returns its document handle
	UploadDocument(ctx context.Context, filename string, content []byte) (*entity.DocumentHandle, error)
}
