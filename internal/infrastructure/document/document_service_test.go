package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"signit-esign/internal/config"
	"signit-esign/internal/domain/apperr"
	"signit-esign/internal/domain/entity"
)

func newTestService(t *testing.T, keepUploads bool) (DocumentService, string) {
	t.Helper()

	root := t.TempDir()
	cfg := &config.Config{
		Document: config.DocumentConfig{
			TemplateDir: root,
			UploadDir:   filepath.Join(root, "uploads"),
			MaxUploadMB: 5,
			KeepUploads: keepUploads,
		},
	}

	svc, err := NewDocumentService(cfg, zap.NewNop())
	require.NoError(t, err)
	return svc, root
}

func TestNewDocumentServiceCreatesUploadFolder(t *testing.T) {
	svc, _ := newTestService(t, false)

	info, err := os.Stat(svc.GetUploadPath())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestReadTemplate(t *testing.T) {
	svc, root := newTestService(t, false)
	require.NoError(t, os.WriteFile(filepath.Join(root, "freelance_template.pdf"), []byte("%PDF-freelance"), 0644))

	content, err := svc.ReadTemplate(entity.ContractFreelance)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-freelance", string(content))
	assert.Equal(t, filepath.Join(root, "freelance_template.pdf"), svc.TemplatePath(entity.ContractFreelance))
}

func TestReadTemplateMissing(t *testing.T) {
	svc, _ := newTestService(t, false)

	_, err := svc.ReadTemplate(entity.ContractEmployee)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, "Template employee not found", appErr.Message)
}

func TestListTemplates(t *testing.T) {
	svc, root := newTestService(t, false)
	for _, name := range []string{"rental_template.pdf", "freelance_template.pdf", "notes.txt", "template.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0644))
	}

	templates, err := svc.ListTemplates()
	require.NoError(t, err)
	assert.Equal(t, []string{"freelance", "rental"}, templates)
}

func TestUploadLifecycle(t *testing.T) {
	svc, _ := newTestService(t, false)

	path, err := svc.SaveUpload("Lease.PDF", strings.NewReader("%PDF-lease"))
	require.NoError(t, err)

	name := filepath.Base(path)
	assert.True(t, strings.HasPrefix(name, "file-"), name)
	assert.True(t, strings.HasSuffix(name, ".pdf"), name)
	assert.Equal(t, svc.GetUploadPath(), filepath.Dir(path))

	content, err := svc.ReadUpload(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-lease", string(content))

	svc.RemoveUpload(path)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestUploadNamesAreUnique(t *testing.T) {
	svc, _ := newTestService(t, false)

	first, err := svc.SaveUpload("a.pdf", strings.NewReader("1"))
	require.NoError(t, err)
	second, err := svc.SaveUpload("a.pdf", strings.NewReader("2"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestKeepUploads(t *testing.T) {
	svc, _ := newTestService(t, true)

	path, err := svc.SaveUpload("a.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	svc.RemoveUpload(path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestReadUploadOutsideFolder(t *testing.T) {
	svc, root := newTestService(t, false)
	outside := filepath.Join(root, "freelance_template.pdf")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0644))

	_, err := svc.ReadUpload(outside)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	svc.RemoveUpload(outside)
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}
