package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"signit-esign/internal/config"
	"signit-esign/internal/domain/apperr"
	"signit-esign/internal/domain/entity"
	"signit-esign/internal/infrastructure/document"
	"signit-esign/internal/usecase"
)

const pdfMIME = "application/pdf"

type SignatureHandler struct {
	usecase    usecase.SignatureUsecase
	docService document.DocumentService
	config     *config.Config
	logger     *zap.Logger
}

func NewSignatureHandler(usecase usecase.SignatureUsecase, docService document.DocumentService, cfg *config.Config, logger *zap.Logger) *SignatureHandler {
	return &SignatureHandler{
		usecase:    usecase,
		docService: docService,
		config:     cfg,
		logger:     logger,
	}
}

// createSignatureBody is the JSON shape of a create request
type createSignatureBody struct {
	ContractType string          `json:"contractType"`
	FormData     json.RawMessage `json:"formData"`
}

type updateStatusBody struct {
	Status string `json:"status"`
}

// ListSignatures godoc
// @Summary List signature requests
// @Description List embedded signature requests, newest first
// @Tags signatures
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(10)
// @Success 200 {array} entity.SignatureRequestSummary
// @Failure 400 {object} entity.ErrorResponse
// @Router /api/signatures [get]
func (h *SignatureHandler) ListSignatures(c *fiber.Ctx) error {
	ctx := c.UserContext()

	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 10)

	requests, err := h.usecase.List(ctx, page, perPage)
	if err != nil {
		return err
	}

	return c.JSON(requests)
}

// GetSignature godoc
// @Summary Get signature request
// @Tags signatures
// @Produce json
// @Param id path string true "Signature request ID"
// @Success 200 {object} entity.SignatureRequestDetail
// @Failure 400 {object} entity.ErrorResponse
// @Router /api/signatures/{id} [get]
func (h *SignatureHandler) GetSignature(c *fiber.Ctx) error {
	request, err := h.usecase.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(request)
}

// UpdateStatus godoc
// @Summary Update signature request status
// @Tags signatures
// @Accept json
// @Produce json
// @Param id path string true "Signature request ID"
// @Param request body updateStatusBody true "pending or completed"
// @Success 200 {object} entity.MessageResponse
// @Failure 422 {object} entity.ErrorResponse
// @Router /api/signatures/{id}/status [patch]
func (h *SignatureHandler) UpdateStatus(c *fiber.Ctx) error {
	var body updateStatusBody
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return apperr.BadRequest("Invalid request body").Wrap(err)
	}

	if err := h.usecase.UpdateStatus(c.UserContext(), c.Params("id"), strings.TrimSpace(body.Status)); err != nil {
		return err
	}

	return c.JSON(entity.NewMessageResponse("Status updated successfully"))
}

// GetSigningLink godoc
// @Summary Generate signing link
// @Description Get the embedded signing URL for one signatory
// @Tags signatures
// @Produce json
// @Param id path string true "Signature request ID"
// @Param signatoryId path string true "Signatory ID"
// @Success 200 {object} entity.SigningLink
// @Failure 400 {object} entity.ErrorResponse
// @Router /api/signatures/{id}/signatories/{signatoryId}/signing-link [get]
func (h *SignatureHandler) GetSigningLink(c *fiber.Ctx) error {
	link, err := h.usecase.GetSigningLink(c.UserContext(), c.Params("id"), c.Params("signatoryId"))
	if err != nil {
		return err
	}

	return c.JSON(link)
}

// GetSubmission godoc
// @Summary Get recorded submission
// @Description Returns what this service submitted for a signature request
// @Tags signatures
// @Produce json
// @Param id path string true "Signature request ID"
// @Success 200 {object} entity.Submission
// @Failure 404 {object} entity.ErrorResponse
// @Router /api/signatures/{id}/submission [get]
func (h *SignatureHandler) GetSubmission(c *fiber.Ctx) error {
	submission, err := h.usecase.GetSubmission(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(submission)
}

// CreateSignature godoc
// @Summary Create signature request
// @Description Create an embedded signature request from JSON or multipart form data
// @Tags signatures
// @Accept json,mpfd
// @Produce json
// @Success 200 {object} entity.CreateSignatureResult
// @Failure 400 {object} entity.ErrorResponse
// @Failure 422 {object} entity.ErrorResponse
// @Failure 500 {object} entity.CreateFailureResponse
// @Router /api/signatures/create [post]
func (h *SignatureHandler) CreateSignature(c *fiber.Ctx) error {
	var (
		input usecase.CreateSignatureInput
		err   error
	)

	if isMultipart(c) {
		var uploadPath string
		input, uploadPath, err = h.parseMultipart(c)
		defer h.docService.RemoveUpload(uploadPath)
	} else {
		input, err = parseJSON(c)
	}
	if err != nil {
		return err
	}

	result, err := h.usecase.Create(c.UserContext(), input)
	if err != nil {
		h.logger.Error("Failed to create signature request",
			zap.String("contract_type", input.ContractType),
			zap.Error(err),
		)
		return err
	}

	return c.JSON(result)
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

func parseJSON(c *fiber.Ctx) (usecase.CreateSignatureInput, error) {
	var body createSignatureBody
	if err := c.BodyParser(&body); err != nil {
		return usecase.CreateSignatureInput{}, apperr.BadRequest("Invalid request body").Wrap(err)
	}

	formData, err := decodeFormData(body.FormData)
	if err != nil {
		return usecase.CreateSignatureInput{}, err
	}

	return usecase.CreateSignatureInput{
		ContractType: body.ContractType,
		FormData:     formData,
	}, nil
}

// parseMultipart reads the form fields and stores the optional PDF. The
// returned path must be removed by the caller.
func (h *SignatureHandler) parseMultipart(c *fiber.Ctx) (usecase.CreateSignatureInput, string, error) {
	input := usecase.CreateSignatureInput{
		ContractType: c.FormValue("contractType"),
	}

	raw := c.FormValue("formData")
	if raw != "" {
		formData, err := decodeFormData(json.RawMessage(raw))
		if err != nil {
			return input, "", apperr.Validation("Invalid form data format").Wrap(err)
		}
		input.FormData = formData
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		// file is optional
		return input, "", nil
	}

	if err := h.checkUpload(fileHeader); err != nil {
		return input, "", err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return input, "", apperr.Internal("Failed to read uploaded file", err)
	}
	defer src.Close()

	path, err := h.docService.SaveUpload(fileHeader.Filename, src)
	if err != nil {
		return input, "", apperr.Internal("Failed to store uploaded file", err)
	}

	content, err := h.docService.ReadUpload(path)
	if err != nil {
		return input, path, apperr.Internal("Failed to read uploaded file", err)
	}

	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return input, path, apperr.BadRequest("Only PDF files are allowed")
	}

	input.File = &usecase.UploadedFile{
		Filename: fileHeader.Filename,
		Content:  content,
	}

	return input, path, nil
}

func (h *SignatureHandler) checkUpload(fileHeader *multipart.FileHeader) error {
	if limit := h.config.Document.MaxUploadBytes(); limit > 0 && fileHeader.Size > limit {
		return apperr.BadRequest(fmt.Sprintf("File too large, maximum size is %dMB", h.config.Document.MaxUploadMB))
	}

	contentType := fileHeader.Header.Get(fiber.HeaderContentType)
	isPDF := strings.HasPrefix(contentType, pdfMIME) ||
		(contentType == "" || contentType == "application/octet-stream") && strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf")
	if !isPDF {
		return apperr.BadRequest("Only PDF files are allowed")
	}

	return nil
}

// decodeFormData accepts a JSON object; null or missing yields nil so the
// usecase reports the missing form data
func decodeFormData(raw json.RawMessage) (entity.FormData, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var formData entity.FormData
	if err := json.Unmarshal(trimmed, &formData); err != nil {
		return nil, apperr.Validation("Form data must be an object").Wrap(err)
	}
	return formData, nil
}
