package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"signit-esign/internal/domain/apperr"
	"signit-esign/internal/domain/entity"
	"signit-esign/internal/domain/repository"
	"signit-esign/internal/infrastructure/document"
)

// DocumentProvisioner registers documents with SignIt, either a static
// contract template or a PDF the user uploaded
type DocumentProvisioner interface {
	UploadTemplate(ctx context.Context, contractType entity.ContractType) (*entity.DocumentHandle, error)
	UploadBuffer(ctx context.Context, content []byte, filename string) (*entity.DocumentHandle, error)
	ListTemplates(ctx context.Context) ([]string, error)
}

type documentProvisioner struct {
	docService document.DocumentService
	repo       repository.DocumentRepository
	logger     *zap.Logger
}

func NewDocumentProvisioner(docService document.DocumentService, repo repository.DocumentRepository, logger *zap.Logger) DocumentProvisioner {
	return &documentProvisioner{
		docService: docService,
		repo:       repo,
		logger:     logger,
	}
}

func (p *documentProvisioner) UploadTemplate(ctx context.Context, contractType entity.ContractType) (*entity.DocumentHandle, error) {
	content, err := p.docService.ReadTemplate(contractType)
	if err != nil {
		p.logger.Error("Failed to read template",
			zap.String("contract_type", string(contractType)),
			zap.Error(err),
		)
		return nil, err
	}

	return p.UploadBuffer(ctx, content, contractType.TemplateFile())
}

func (p *documentProvisioner) UploadBuffer(ctx context.Context, content []byte, filename string) (*entity.DocumentHandle, error) {
	p.logger.Info("Uploading document",
		zap.String("filename", filename),
		zap.Int("size_bytes", len(content)),
	)

	handle, err := p.repo.UploadDocument(ctx, filename, content)
	if err != nil {
		p.logger.Error("Failed to upload document",
			zap.String("filename", filename),
			zap.Error(err),
		)
		// credential failures keep their own status
		if errors.Is(err, apperr.ErrUnauthorized) {
			return nil, err
		}
		return nil, apperr.Internal(fmt.Sprintf("Failed to upload document: %s", providerMessage(err)), err)
	}

	return handle, nil
}

func (p *documentProvisioner) ListTemplates(ctx context.Context) ([]string, error) {
	templates, err := p.docService.ListTemplates()
	if err != nil {
		p.logger.Error("Failed to list templates", zap.Error(err))
		return nil, apperr.Internal("Failed to list templates", err)
	}
	return templates, nil
}
