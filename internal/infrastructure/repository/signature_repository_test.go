package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"signit-esign/internal/domain/entity"
	"signit-esign/internal/domain/repository"
	"signit-esign/internal/infrastructure/httpclient"
)

type fakeHTTPClient struct {
	getFn       func(ctx context.Context, path string, query url.Values, result interface{}) error
	postFn      func(ctx context.Context, path string, body interface{}, result interface{}) error
	patchFn     func(ctx context.Context, path string, body interface{}, result interface{}) error
	multipartFn func(ctx context.Context, path string, fields map[string]string, files map[string]httpclient.FileUpload, result interface{}) error
}

func (f *fakeHTTPClient) Get(ctx context.Context, path string, query url.Values, result interface{}) error {
	return f.getFn(ctx, path, query, result)
}

func (f *fakeHTTPClient) Post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return f.postFn(ctx, path, body, result)
}

func (f *fakeHTTPClient) Patch(ctx context.Context, path string, body interface{}, result interface{}) error {
	return f.patchFn(ctx, path, body, result)
}

func (f *fakeHTTPClient) PostMultipart(ctx context.Context, path string, fields map[string]string, files map[string]httpclient.FileUpload, result interface{}) error {
	return f.multipartFn(ctx, path, fields, files, result)
}

// respond decodes raw into result the way the real client does
func respond(raw string, result interface{}) error {
	return json.Unmarshal([]byte(raw), result)
}

func TestListSendsFixedOrdering(t *testing.T) {
	client := &fakeHTTPClient{
		getFn: func(ctx context.Context, path string, query url.Values, result interface{}) error {
			assert.Equal(t, "/signature-requests", path)
			assert.Equal(t, "3", query.Get("current_page"))
			assert.Equal(t, "25", query.Get("page_size"))
			assert.Equal(t, "created_date", query.Get("order_by"))
			assert.Equal(t, "desc", query.Get("order_direction"))
			assert.Equal(t, "embedded", query.Get("signature_request_type"))
			return respond(`[{"id":"a","title":"A","created_date":"2024-01-01","status":"pending"}]`, result)
		},
	}

	repo := NewSignatureRepository(client, zap.NewNop())
	requests, err := repo.List(context.Background(), entity.ListSignatureRequestsParams{Page: 3, PerPage: 25})
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "a", requests[0].ID)
}

func TestDecodeSignatureRequestListEnvelope(t *testing.T) {
	requests, err := decodeSignatureRequestList(json.RawMessage(`{"data":[{"id":"x"},{"id":"y"}]}`))
	require.NoError(t, err)
	assert.Len(t, requests, 2)

	requests, err = decodeSignatureRequestList(nil)
	require.NoError(t, err)
	assert.Empty(t, requests)

	_, err = decodeSignatureRequestList(json.RawMessage(`"nope"`))
	assert.Error(t, err)
}

func TestGetSigningLink(t *testing.T) {
	client := &fakeHTTPClient{
		getFn: func(ctx context.Context, path string, query url.Values, result interface{}) error {
			assert.Equal(t, "/signature-requests/sr-1/signatories/sg-2/signing-link", path)
			return respond(`{"url":"https://sign.test/abc"}`, result)
		},
	}

	link, err := NewSignatureRepository(client, zap.NewNop()).GetSigningLink(context.Background(), "sr-1", "sg-2")
	require.NoError(t, err)
	assert.Equal(t, "https://sign.test/abc", link)
}

func TestGetWrapsProviderError(t *testing.T) {
	client := &fakeHTTPClient{
		getFn: func(ctx context.Context, path string, query url.Values, result interface{}) error {
			return &httpclient.APIError{StatusCode: http.StatusNotFound}
		},
	}

	_, err := NewSignatureRepository(client, zap.NewNop()).Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, httpclient.IsNotFound(err))
}

func TestUpdateStatusPatchesBody(t *testing.T) {
	client := &fakeHTTPClient{
		patchFn: func(ctx context.Context, path string, body interface{}, result interface{}) error {
			assert.Equal(t, "/signature-requests/sr-1", path)
			assert.Equal(t, &entity.UpdateStatusRequest{Status: "completed"}, body)
			return nil
		},
	}

	require.NoError(t, NewSignatureRepository(client, zap.NewNop()).UpdateStatus(context.Background(), "sr-1", "completed"))
}

func TestCreateFromTemplatePath(t *testing.T) {
	client := &fakeHTTPClient{
		postFn: func(ctx context.Context, path string, body interface{}, result interface{}) error {
			assert.Equal(t, "/templates/tpl-7/signature-requests", path)
			return respond(`{"id":"sr-9","created_date":"2024-02-02"}`, result)
		},
	}

	created, err := NewSignatureRepository(client, zap.NewNop()).CreateFromTemplate(context.Background(), "tpl-7", &entity.TemplateSignatureRequest{})
	require.NoError(t, err)
	assert.Equal(t, "sr-9", created.ID)
	assert.Equal(t, "2024-02-02", created.CreatedDate)
}

func TestUploadDocument(t *testing.T) {
	client := &fakeHTTPClient{
		multipartFn: func(ctx context.Context, path string, fields map[string]string, files map[string]httpclient.FileUpload, result interface{}) error {
			assert.Equal(t, "/documents", path)
			require.Contains(t, files, "document")
			assert.Equal(t, "application/pdf", files["document"].ContentType)
			assert.Equal(t, "rental.pdf", files["document"].Filename)
			return respond(`{"document_name":"doc-1"}`, result)
		},
	}

	handle, err := NewDocumentRepository(client, zap.NewNop()).UploadDocument(context.Background(), "rental.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "doc-1", handle.DocumentName)
}

func TestUploadDocumentMissingName(t *testing.T) {
	client := &fakeHTTPClient{
		multipartFn: func(ctx context.Context, path string, fields map[string]string, files map[string]httpclient.FileUpload, result interface{}) error {
			return respond(`{}`, result)
		},
	}

	_, err := NewDocumentRepository(client, zap.NewNop()).UploadDocument(context.Background(), "a.pdf", []byte("%PDF"))
	assert.Error(t, err)
}

func TestSubmissionRepositoryWithoutRedis(t *testing.T) {
	repo := &submissionRepository{logger: zap.NewNop()}

	require.NoError(t, repo.Save(context.Background(), &entity.Submission{SignatureRequestID: "sr-1"}))

	_, err := repo.FindByID(context.Background(), "sr-1")
	assert.ErrorIs(t, err, repository.ErrSubmissionNotFound)
}
