package repository

import (
	"context"

	"signit-esign/internal/domain/entity"
)

// SignatureRepository talks to the SignIt signature-request endpoints
type SignatureRepository interface {
	List(ctx context.Context, params entity.ListSignatureRequestsParams) ([]entity.SignatureRequest, error)
	Get(ctx context.Context, id string) (*entity.SignatureRequest, error)
	UpdateStatus(ctx context.Context, id, status string) error
	GetSigningLink(ctx context.Context, id, signatoryID string) (string, error)

	// CreateEmbedded creates a signature request on an uploaded document
	CreateEmbedded(ctx context.Context, req *entity.EmbeddedSignatureRequest) (*entity.SignatureRequest, error)

	// CreateFromTemplate creates a signature request from a provider-side template
	CreateFromTemplate(ctx context.Context, templateID string, req *entity.TemplateSignatureRequest) (*entity.SignatureRequest, error)
}
