package document

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"signit-esign/internal/config"
	"signit-esign/internal/domain/apperr"
	"signit-esign/internal/domain/entity"
)

const templateSuffix = "_template.pdf"

var Module = fx.Module("document",
	fx.Provide(NewDocumentService),
)

// DocumentService handles template and upload file operations
type DocumentService interface {
	// ReadTemplate returns the bytes of the static template for a contract type
	ReadTemplate(contractType entity.ContractType) ([]byte, error)

	// TemplatePath returns the full path of the template for a contract type
	TemplatePath(contractType entity.ContractType) string

	// ListTemplates returns the contract types that have a template on disk
	ListTemplates() ([]string, error)

	// SaveUpload stores an uploaded PDF under a unique name and returns its path
	SaveUpload(originalName string, r io.Reader) (string, error)

	// ReadUpload returns the bytes of a stored upload
	ReadUpload(path string) ([]byte, error)

	// RemoveUpload deletes a stored upload unless uploads are kept
	RemoveUpload(path string)

	// GetTemplatePath returns the full path to the template folder
	GetTemplatePath() string

	// GetUploadPath returns the full path to the upload folder
	GetUploadPath() string
}

type documentService struct {
	config *config.DocumentConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewDocumentService(cfg *config.Config, logger *zap.Logger) (DocumentService, error) {
	svc := &documentService{
		config: &cfg.Document,
		logger: logger,
		now:    time.Now,
	}

	// Ensure all directories exist
	if err := svc.ensureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create document directories: %w", err)
	}

	logger.Info("Document service initialized",
		zap.String("template_folder", svc.GetTemplatePath()),
		zap.String("upload_folder", svc.GetUploadPath()),
		zap.Bool("keep_uploads", cfg.Document.KeepUploads),
	)

	return svc, nil
}

func (s *documentService) ensureDirectories() error {
	dirs := []string{
		s.GetTemplatePath(),
		s.GetUploadPath(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

func (s *documentService) GetTemplatePath() string {
	return filepath.Clean(s.config.TemplateDir)
}

func (s *documentService) GetUploadPath() string {
	return filepath.Clean(s.config.UploadDir)
}

func (s *documentService) TemplatePath(contractType entity.ContractType) string {
	return filepath.Join(s.GetTemplatePath(), contractType.TemplateFile())
}

func (s *documentService) ReadTemplate(contractType entity.ContractType) ([]byte, error) {
	path := s.TemplatePath(contractType)

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFound(fmt.Sprintf("Template %s not found", contractType)).Wrap(err)
		}
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	s.logger.Debug("Template loaded",
		zap.String("contract_type", string(contractType)),
		zap.String("path", path),
		zap.Int("size_bytes", len(content)),
	)

	return content, nil
}

func (s *documentService) ListTemplates() ([]string, error) {
	files, err := os.ReadDir(s.GetTemplatePath())
	if err != nil {
		return nil, fmt.Errorf("failed to read template folder: %w", err)
	}

	templates := make([]string, 0, len(files))
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		filename := file.Name()
		if !strings.HasSuffix(filename, templateSuffix) {
			continue
		}

		templates = append(templates, strings.TrimSuffix(filename, templateSuffix))
	}

	sort.Strings(templates)
	return templates, nil
}

func (s *documentService) SaveUpload(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".pdf"
	}

	filename := fmt.Sprintf("file-%d-%s%s", s.now().UnixMilli(), uuid.NewString(), ext)
	path := filepath.Join(s.GetUploadPath(), filename)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	s.logger.Info("Upload stored",
		zap.String("original_name", originalName),
		zap.String("path", path),
		zap.Int64("size_bytes", written),
	)

	return path, nil
}

func (s *documentService) ReadUpload(path string) ([]byte, error) {
	if !s.inUploadDir(path) {
		return nil, apperr.BadRequest("Invalid upload path")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload file: %w", err)
	}
	return content, nil
}

func (s *documentService) RemoveUpload(path string) {
	if path == "" || s.config.KeepUploads || !s.inUploadDir(path) {
		return
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		// Log warning but don't fail - the request already completed
		s.logger.Warn("Failed to delete upload file",
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}

	s.logger.Debug("Upload file deleted", zap.String("path", path))
}

func (s *documentService) inUploadDir(path string) bool {
	rel, err := filepath.Rel(s.GetUploadPath(), filepath.Clean(path))
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}
