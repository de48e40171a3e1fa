package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"signit-esign/internal/domain/entity"
	"signit-esign/internal/domain/repository"
	"signit-esign/internal/infrastructure/httpclient"
)

const documentField = "document"

type documentRepository struct {
	client httpclient.HTTPClient
	logger *zap.Logger
}

func NewDocumentRepository(client httpclient.HTTPClient, logger *zap.Logger) repository.DocumentRepository {
	return &documentRepository{
		client: client,
		logger: logger,
	}
}

func (r *documentRepository) UploadDocument(ctx context.Context, filename string, content []byte) (*entity.DocumentHandle, error) {
	files := map[string]httpclient.FileUpload{
		documentField: {
			Filename:    filename,
			ContentType: "application/pdf",
			Content:     content,
		},
	}

	var response entity.DocumentHandle
	if err := r.client.PostMultipart(ctx, "/documents", nil, files, &response); err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	if response.DocumentName == "" {
		return nil, fmt.Errorf("failed to upload document: response missing document_name")
	}

	r.logger.Info("Document uploaded",
		zap.String("filename", filename),
		zap.String("document_name", response.DocumentName),
		zap.Int("size_bytes", len(content)),
	)

	return &response, nil
}
