package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"signit-esign/internal/domain/entity"
	"signit-esign/internal/domain/repository"
	"signit-esign/internal/infrastructure/httpclient"
)

type signatureRepository struct {
	client httpclient.HTTPClient
	logger *zap.Logger
}

func NewSignatureRepository(client httpclient.HTTPClient, logger *zap.Logger) repository.SignatureRepository {
	return &signatureRepository{
		client: client,
		logger: logger,
	}
}

func (r *signatureRepository) List(ctx context.Context, params entity.ListSignatureRequestsParams) ([]entity.SignatureRequest, error) {
	query := url.Values{}
	query.Set("current_page", strconv.Itoa(params.Page))
	query.Set("page_size", strconv.Itoa(params.PerPage))
	query.Set("order_by", "created_date")
	query.Set("order_direction", "desc")
	query.Set("signature_request_type", "embedded")

	var raw json.RawMessage
	if err := r.client.Get(ctx, "/signature-requests", query, &raw); err != nil {
		return nil, fmt.Errorf("failed to list signature requests: %w", err)
	}

	requests, err := decodeSignatureRequestList(raw)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Signature requests fetched",
		zap.Int("page", params.Page),
		zap.Int("count", len(requests)),
	)

	return requests, nil
}

// decodeSignatureRequestList accepts both a bare array and a {"data": [...]}
// envelope
func decodeSignatureRequestList(raw json.RawMessage) ([]entity.SignatureRequest, error) {
	if len(raw) == 0 {
		return []entity.SignatureRequest{}, nil
	}

	var requests []entity.SignatureRequest
	if err := json.Unmarshal(raw, &requests); err == nil {
		return requests, nil
	}

	var envelope struct {
		Data []entity.SignatureRequest `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode signature request list: %w", err)
	}
	if envelope.Data == nil {
		return []entity.SignatureRequest{}, nil
	}
	return envelope.Data, nil
}

func (r *signatureRepository) Get(ctx context.Context, id string) (*entity.SignatureRequest, error) {
	var response entity.SignatureRequest

	if err := r.client.Get(ctx, "/signature-requests/"+url.PathEscape(id), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get signature request: %w", err)
	}

	return &response, nil
}

func (r *signatureRepository) UpdateStatus(ctx context.Context, id, status string) error {
	body := &entity.UpdateStatusRequest{Status: status}

	if err := r.client.Patch(ctx, "/signature-requests/"+url.PathEscape(id), body, nil); err != nil {
		return fmt.Errorf("failed to update signature request status: %w", err)
	}

	r.logger.Info("Signature request status updated",
		zap.String("id", id),
		zap.String("status", status),
	)

	return nil
}

func (r *signatureRepository) GetSigningLink(ctx context.Context, id, signatoryID string) (string, error) {
	var response entity.SigningLinkResponse

	path := fmt.Sprintf("/signature-requests/%s/signatories/%s/signing-link", url.PathEscape(id), url.PathEscape(signatoryID))
	if err := r.client.Get(ctx, path, nil, &response); err != nil {
		return "", fmt.Errorf("failed to get signing link: %w", err)
	}

	return response.URL, nil
}

func (r *signatureRepository) CreateEmbedded(ctx context.Context, req *entity.EmbeddedSignatureRequest) (*entity.SignatureRequest, error) {
	var response entity.SignatureRequest

	if err := r.client.Post(ctx, "/signature-requests/embedded", req, &response); err != nil {
		return nil, fmt.Errorf("failed to create embedded signature request: %w", err)
	}

	r.logger.Info("Embedded signature request created",
		zap.String("id", response.ID),
		zap.String("document_name", req.DocumentName),
		zap.Int("signatories", len(req.SignatureRequest.Signatories)),
	)

	return &response, nil
}

func (r *signatureRepository) CreateFromTemplate(ctx context.Context, templateID string, req *entity.TemplateSignatureRequest) (*entity.SignatureRequest, error) {
	var response entity.SignatureRequest

	path := fmt.Sprintf("/templates/%s/signature-requests", url.PathEscape(templateID))
	if err := r.client.Post(ctx, path, req, &response); err != nil {
		return nil, fmt.Errorf("failed to create signature request from template: %w", err)
	}

	r.logger.Info("Template signature request created",
		zap.String("id", response.ID),
		zap.String("template_id", templateID),
	)

	return &response, nil
}
