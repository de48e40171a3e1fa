package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"signit-esign/internal/domain/apperr"
	"signit-esign/internal/domain/entity"
	"signit-esign/internal/domain/repository"
	"signit-esign/internal/infrastructure/httpclient"
)

const (
	templateRequestName = "Signature Request From Templates"
	templateRole        = "Contractor"

	unreadableCreateResponse = "Signature request was created but the provider response could not be read"

	defaultPage    = 1
	defaultPerPage = 10
)

// UploadedFile is a PDF received with a multipart create request
type UploadedFile struct {
	Filename string
	Content  []byte
}

// CreateSignatureInput is a create request after the boundary resolved its
// JSON or multipart shape
type CreateSignatureInput struct {
	ContractType string
	FormData     entity.FormData
	File         *UploadedFile
}

type SignatureUsecase interface {
	List(ctx context.Context, page, perPage int) ([]entity.SignatureRequestSummary, error)
	Get(ctx context.Context, id string) (*entity.SignatureRequestDetail, error)
	UpdateStatus(ctx context.Context, id, status string) error
	GetSigningLink(ctx context.Context, id, signatoryID string) (*entity.SigningLink, error)
	Create(ctx context.Context, input CreateSignatureInput) (*entity.CreateSignatureResult, error)
	// GetSubmission returns what this service recorded when it created id
	GetSubmission(ctx context.Context, id string) (*entity.Submission, error)
}

type signatureUsecase struct {
	repo        repository.SignatureRepository
	submissions repository.SubmissionRepository
	provisioner DocumentProvisioner
	mapper      FieldMapper
	logger      *zap.Logger
	now         func() time.Time
}

func NewSignatureUsecase(
	repo repository.SignatureRepository,
	submissions repository.SubmissionRepository,
	provisioner DocumentProvisioner,
	mapper FieldMapper,
	logger *zap.Logger,
) SignatureUsecase {
	return &signatureUsecase{
		repo:        repo,
		submissions: submissions,
		provisioner: provisioner,
		mapper:      mapper,
		logger:      logger,
		now:         time.Now,
	}
}

func (u *signatureUsecase) List(ctx context.Context, page, perPage int) ([]entity.SignatureRequestSummary, error) {
	// Set default values
	if page <= 0 {
		page = defaultPage
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	u.logger.Info("Listing signature requests",
		zap.Int("page", page),
		zap.Int("per_page", perPage),
	)

	requests, err := u.repo.List(ctx, entity.ListSignatureRequestsParams{Page: page, PerPage: perPage})
	if err != nil {
		u.logger.Error("Failed to list signature requests", zap.Error(err))
		return nil, readError(err, "Failed to fetch signature requests", "")
	}

	summaries := make([]entity.SignatureRequestSummary, 0, len(requests))
	for _, r := range requests {
		summaries = append(summaries, entity.SignatureRequestSummary{
			ID:          r.ID,
			Title:       r.Title,
			CreatedDate: r.CreatedDate,
			Status:      r.Status,
		})
	}

	return summaries, nil
}

func (u *signatureUsecase) Get(ctx context.Context, id string) (*entity.SignatureRequestDetail, error) {
	if id == "" {
		return nil, apperr.BadRequest("Signature request ID is required")
	}

	request, err := u.repo.Get(ctx, id)
	if err != nil {
		u.logger.Error("Failed to get signature request",
			zap.String("id", id),
			zap.Error(err),
		)
		return nil, readError(err, "Failed to fetch signature request", "Signature request not found")
	}

	return &entity.SignatureRequestDetail{
		ID:           request.ID,
		Title:        request.Title,
		CreatedDate:  request.CreatedDate,
		Status:       request.Status,
		Signatories:  request.Signatories,
		DocumentName: request.DocumentName,
	}, nil
}

func (u *signatureUsecase) UpdateStatus(ctx context.Context, id, status string) error {
	if id == "" {
		return apperr.BadRequest("Signature request ID is required")
	}
	if status == "" {
		return apperr.Validation("Status is required")
	}
	if status != entity.StatusPending && status != entity.StatusCompleted {
		return apperr.Validation("Invalid status value")
	}

	if err := u.repo.UpdateStatus(ctx, id, status); err != nil {
		u.logger.Error("Failed to update signature request status",
			zap.String("id", id),
			zap.String("status", status),
			zap.Error(err),
		)
		return readError(err, "Failed to update signature request status", "Signature request not found")
	}

	return nil
}

func (u *signatureUsecase) GetSigningLink(ctx context.Context, id, signatoryID string) (*entity.SigningLink, error) {
	if id == "" || signatoryID == "" {
		return nil, apperr.BadRequest("Signature request ID and signatory ID are required")
	}

	link, err := u.repo.GetSigningLink(ctx, id, signatoryID)
	if err != nil {
		u.logger.Error("Failed to generate signing link",
			zap.String("id", id),
			zap.String("signatory_id", signatoryID),
			zap.Error(err),
		)
		return nil, readError(err, "Failed to generate signing link", "Signature request or signatory not found")
	}

	return &entity.SigningLink{SigningLink: link}, nil
}

func (u *signatureUsecase) Create(ctx context.Context, input CreateSignatureInput) (*entity.CreateSignatureResult, error) {
	contractType, err := ParseContractType(input.ContractType)
	if err != nil {
		return nil, err
	}
	if err := ValidateFormData(contractType, input.FormData); err != nil {
		return nil, err
	}
	if contractType.RequiresUpload() && input.File == nil {
		return nil, apperr.BadRequest("File is required for this contract type")
	}

	// Mapping is pure, so it runs before anything is uploaded
	signatories, err := u.mapper.MapSignatories(contractType, input.FormData)
	if err != nil {
		return nil, err
	}

	u.logger.Info("Creating signature request",
		zap.String("contract_type", string(contractType)),
		zap.Int("signatories", len(signatories)),
		zap.Bool("uploaded_file", input.File != nil),
	)

	if contractType == entity.ContractTemplate {
		return u.createFromTemplate(ctx, input.FormData, signatories)
	}

	var handle *entity.DocumentHandle
	if input.File != nil && contractType.RequiresUpload() {
		handle, err = u.provisioner.UploadBuffer(ctx, input.File.Content, input.File.Filename)
	} else {
		handle, err = u.provisioner.UploadTemplate(ctx, contractType)
	}
	if err != nil {
		return nil, err
	}

	title := input.FormData.String("title")
	if title == "" {
		title = defaultTitle(contractType, signatories)
	}

	req := &entity.EmbeddedSignatureRequest{
		SignatureRequest: entity.SignatureRequestBody{
			Title:       title,
			Signatories: signatories,
		},
		DocumentName: handle.DocumentName,
	}

	created, err := u.repo.CreateEmbedded(ctx, req)
	if errors.Is(err, httpclient.ErrDecodeResponse) {
		u.logger.Error("Signature request accepted but its response could not be decoded",
			zap.String("document_name", handle.DocumentName),
			zap.String("contract_type", string(contractType)),
			zap.Error(err),
		)
		return nil, apperr.Internal(unreadableCreateResponse, err)
	}
	if err != nil {
		// SignIt offers no way to delete the uploaded document
		u.logger.Warn("Signature request failed after document upload, document left orphaned",
			zap.String("document_name", handle.DocumentName),
			zap.String("contract_type", string(contractType)),
			zap.Error(err),
		)
		return nil, createError(err)
	}

	if created.Title == "" {
		created.Title = title
	}

	u.record(ctx, &entity.Submission{
		SignatureRequestID: created.ID,
		ContractType:       contractType,
		Title:              created.Title,
		DocumentName:       handle.DocumentName,
		SignatoryName:      signatories[0].FullName,
		SignatoryCount:     len(signatories),
		FieldCount:         countFields(signatories),
		UploadedFile:       input.File != nil && contractType.RequiresUpload(),
	})

	u.logger.Info("Signature request created",
		zap.String("id", created.ID),
		zap.String("status", created.Status),
	)

	return &entity.CreateSignatureResult{
		Success:   true,
		ID:        created.ID,
		Title:     created.Title,
		Status:    created.Status,
		CreatedAt: created.CreatedDate,
	}, nil
}

// createFromTemplate skips document upload, the provider template carries
// both document and field layout
func (u *signatureUsecase) createFromTemplate(ctx context.Context, formData entity.FormData, signatories []entity.Signatory) (*entity.CreateSignatureResult, error) {
	templateID := formData.String("templateId")

	roles := make([]entity.TemplateRole, 0, len(signatories))
	for _, s := range signatories {
		roles = append(roles, entity.TemplateRole{
			Role:               templateRole,
			Name:               s.FullName,
			NotificationMethod: s.NotificationMethod,
			VerificationMethod: s.VerificationMethod,
		})
	}

	created, err := u.repo.CreateFromTemplate(ctx, templateID, &entity.TemplateSignatureRequest{
		Name:  templateRequestName,
		Roles: roles,
	})
	if errors.Is(err, httpclient.ErrDecodeResponse) {
		u.logger.Error("Template signature request accepted but its response could not be decoded",
			zap.String("template_id", templateID),
			zap.Error(err),
		)
		return nil, apperr.Internal(unreadableCreateResponse, err)
	}
	if err != nil {
		return nil, createError(err)
	}

	u.record(ctx, &entity.Submission{
		SignatureRequestID: created.ID,
		ContractType:       entity.ContractTemplate,
		Title:              templateRequestName,
		TemplateID:         templateID,
		SignatoryName:      signatories[0].FullName,
		SignatoryCount:     len(signatories),
	})

	return &entity.CreateSignatureResult{
		Success:   true,
		ID:        created.ID,
		CreatedAt: created.CreatedDate,
	}, nil
}

func (u *signatureUsecase) GetSubmission(ctx context.Context, id string) (*entity.Submission, error) {
	submission, err := u.submissions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			return nil, apperr.NotFound("Submission not found")
		}
		u.logger.Error("Failed to get submission", zap.String("id", id), zap.Error(err))
		return nil, apperr.Internal("Failed to get submission", err)
	}
	return submission, nil
}

// record stores the submission; the request already succeeded, so failures
// are only logged
func (u *signatureUsecase) record(ctx context.Context, submission *entity.Submission) {
	if submission.SignatureRequestID == "" {
		return
	}
	submission.CreatedAt = u.now()

	if err := u.submissions.Save(ctx, submission); err != nil {
		u.logger.Warn("Failed to record submission",
			zap.String("id", submission.SignatureRequestID),
			zap.Error(err),
		)
	}
}

func defaultTitle(contractType entity.ContractType, signatories []entity.Signatory) string {
	title := contractType.DisplayName() + " Agreement"
	if len(signatories) > 0 && signatories[0].FullName != "" {
		title += " - " + signatories[0].FullName
	}
	return title
}

func countFields(signatories []entity.Signatory) int {
	n := 0
	for _, s := range signatories {
		n += len(s.Fields)
	}
	return n
}

// providerMessage extracts a readable message from a provider call failure
func providerMessage(err error) string {
	if apiErr, ok := httpclient.AsAPIError(err); ok {
		return apiErr.Message()
	}
	if appErr, ok := apperr.From(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// readError maps failures of the read and status endpoints. Credential
// failures stay 401, everything else is reported as a bad request.
func readError(err error, prefix, notFoundMessage string) error {
	if errors.Is(err, apperr.ErrUnauthorized) {
		return err
	}
	if notFoundMessage != "" && httpclient.IsNotFound(err) {
		return apperr.BadRequest(notFoundMessage).Wrap(err)
	}
	return apperr.BadRequest(fmt.Sprintf("%s: %s", prefix, providerMessage(err))).Wrap(err)
}

// createError maps failures of the create endpoints. A provider rejection
// carries the provider's body back to the client.
func createError(err error) error {
	if errors.Is(err, apperr.ErrUnauthorized) {
		return err
	}
	if apiErr, ok := httpclient.AsAPIError(err); ok {
		return apperr.Provider("Signature request rejected by provider", apiErr.Payload(), err)
	}
	return apperr.Internal(fmt.Sprintf("Failed to create signature request: %s", providerMessage(err)), err)
}
