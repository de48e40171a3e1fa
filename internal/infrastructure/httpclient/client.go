package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"signit-esign/internal/config"
	"signit-esign/internal/domain/entity"
	"signit-esign/internal/infrastructure/oauth2"
	"signit-esign/internal/infrastructure/retry"
)

const (
	maxBodyLogLength   = 500   // Maximum characters to log for body
	maxBodyStoreLength = 10000 // Maximum characters stored per API log body
)

var base64Pattern = regexp.MustCompile(`"([A-Za-z0-9+/=]{100,})"`)

// ErrDecodeResponse is returned when SignIt answered 2xx with a body that does
// not match the expected shape. The call itself succeeded provider-side.
var ErrDecodeResponse = errors.New("failed to decode response")

// APIError is returned for every non-2xx response from SignIt
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: status=%d, body=%s", e.StatusCode, truncateString(string(e.Body), maxBodyLogLength))
}

// Payload returns the decoded JSON body, or the raw text when it is not JSON
func (e *APIError) Payload() any {
	var payload any
	if err := json.Unmarshal(e.Body, &payload); err == nil {
		return payload
	}
	return string(e.Body)
}

// Message returns the provider's "message" field when present
func (e *APIError) Message() string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// AsAPIError extracts the provider error from err's chain
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether SignIt answered 404
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

type HTTPClient interface {
	// Get performs an authenticated GET request
	Get(ctx context.Context, path string, query url.Values, result interface{}) error
	// Post performs an authenticated JSON POST request
	Post(ctx context.Context, path string, body interface{}, result interface{}) error
	// Patch performs an authenticated JSON PATCH request
	Patch(ctx context.Context, path string, body interface{}, result interface{}) error
	// PostMultipart performs an authenticated multipart POST request
	PostMultipart(ctx context.Context, path string, fields map[string]string, files map[string]FileUpload, result interface{}) error
}

// FileUpload represents a file to be uploaded
type FileUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// APILogSaver interface for saving API logs
type APILogSaver interface {
	Save(ctx context.Context, log *entity.APILog) error
}

type httpClient struct {
	client       *http.Client
	config       *config.Config
	baseURL      string
	tokenService oauth2.TokenService
	apiLogSaver  APILogSaver
	policy       retry.Policy
	logger       *zap.Logger
}

func NewHTTPClient(cfg *config.Config, tokenService oauth2.TokenService, apiLogSaver APILogSaver, logger *zap.Logger) HTTPClient {
	c := &httpClient{
		client: &http.Client{
			Timeout: cfg.SignIt.Timeout(),
		},
		config:       cfg,
		baseURL:      cfg.SignIt.APIURL,
		tokenService: tokenService,
		apiLogSaver:  apiLogSaver,
		policy:       retry.NewPolicy(cfg),
		logger:       logger,
	}

	logger.Info("HTTP Client initialized",
		zap.String("base_url", c.baseURL),
		zap.Bool("api_log_enabled", apiLogSaver != nil),
	)

	return c
}

// requestBuilder creates a fresh request for every attempt, along with the
// body text used for logging
type requestBuilder func(ctx context.Context) (*http.Request, []byte, error)

// truncateString truncates a string if it exceeds maxLength
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + fmt.Sprintf("... [truncated, total %d chars]", len(s))
}

// truncateBase64InJSON truncates base64-like values in JSON string
func truncateBase64InJSON(jsonStr string, maxLength int) string {
	return base64Pattern.ReplaceAllStringFunc(jsonStr, func(match string) string {
		content := match[1 : len(match)-1]
		if len(content) > maxLength {
			return fmt.Sprintf(`"%s... [base64 truncated, total %d chars]"`, content[:maxLength], len(content))
		}
		return match
	})
}

// formatHeadersForLog formats HTTP headers for logging, hiding credentials
func formatHeadersForLog(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		for _, value := range headers[key] {
			if key == "Authorization" {
				value = "[redacted]"
			}
			if len(value) > 100 {
				value = value[:100] + "..."
			}
			sb.WriteString(fmt.Sprintf("Header %s=%s\n", key, value))
		}
	}
	return sb.String()
}

func (c *httpClient) logRequest(method, url string, headers http.Header, body []byte) {
	var logBuilder strings.Builder

	logBuilder.WriteString("\n>>> [SIGNIT-REQ]\n")
	logBuilder.WriteString(fmt.Sprintf("Method: %s\n", method))
	logBuilder.WriteString(fmt.Sprintf("URL: %s\n", url))
	logBuilder.WriteString(formatHeadersForLog(headers))

	if len(body) > 0 {
		bodyStr := truncateBase64InJSON(string(body), 100)
		bodyStr = truncateString(bodyStr, maxBodyLogLength)
		logBuilder.WriteString(fmt.Sprintf("REQUEST BODY: %s\n", bodyStr))
	}

	c.logger.Info(logBuilder.String())
}

func (c *httpClient) logResponse(statusCode int, statusText string, duration time.Duration, body []byte) {
	var logBuilder strings.Builder

	logBuilder.WriteString("\n>>> [SIGNIT-RESPONSE]\n")
	logBuilder.WriteString(fmt.Sprintf("Status: %d %s\n", statusCode, statusText))
	logBuilder.WriteString(fmt.Sprintf("Duration: %s\n", duration))

	bodyStr := truncateString(string(body), maxBodyLogLength)
	logBuilder.WriteString(fmt.Sprintf("Body: %s\n", bodyStr))

	c.logger.Info(logBuilder.String())
}

// saveAPILog stores the call asynchronously so it never blocks the request
func (c *httpClient) saveAPILog(ctx context.Context, method, endpoint string, requestBody, responseBody []byte, statusCode int, duration time.Duration) {
	if c.apiLogSaver == nil {
		return
	}

	reqBodyStr := ""
	if len(requestBody) > 0 {
		reqBodyStr = truncateBase64InJSON(string(requestBody), 100)
		if len(reqBodyStr) > maxBodyStoreLength {
			reqBodyStr = reqBodyStr[:maxBodyStoreLength] + "... [truncated]"
		}
	}

	respBodyStr := string(responseBody)
	if len(respBodyStr) > maxBodyStoreLength {
		respBodyStr = respBodyStr[:maxBodyStoreLength] + "... [truncated]"
	}

	apiLog := &entity.APILog{
		RequestID:    RequestIDFromContext(ctx),
		Endpoint:     endpoint,
		Method:       method,
		RequestBody:  reqBodyStr,
		ResponseBody: respBodyStr,
		StatusCode:   statusCode,
		Duration:     duration.Milliseconds(),
		CreatedAt:    time.Now(),
	}

	go func() {
		if err := c.apiLogSaver.Save(context.Background(), apiLog); err != nil {
			c.logger.Warn("Failed to save API log to database",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
		}
	}()
}

// setAuthHeaders returns the access token it attached
func (c *httpClient) setAuthHeaders(ctx context.Context, req *http.Request) (string, error) {
	accessToken, err := c.tokenService.GetAccessToken(ctx)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	return accessToken, nil
}

// execute sends the request, refreshing the token once on 401. Idempotent
// requests are retried on transport errors and transient statuses.
func (c *httpClient) execute(ctx context.Context, method string, build requestBuilder, result interface{}) error {
	attempt := func() (struct{}, error) {
		err := c.do(ctx, build, result, false)
		if err == nil {
			return struct{}{}, nil
		}
		if !isIdempotent(method) || !isTransient(err) {
			return struct{}{}, retry.Permanent(err)
		}
		c.logger.Warn("Transient SignIt failure, retrying",
			zap.String("method", method),
			zap.Error(err),
		)
		return struct{}{}, err
	}

	_, err := retry.Do(ctx, c.policy, attempt)
	return err
}

func (c *httpClient) do(ctx context.Context, build requestBuilder, result interface{}, isRetry bool) error {
	req, logBody, err := build(ctx)
	if err != nil {
		return err
	}

	accessToken, err := c.setAuthHeaders(ctx, req)
	if err != nil {
		return err
	}

	fullURL := req.URL.String()
	c.logRequest(req.Method, fullURL, req.Header, logBody)

	startTime := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(startTime)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logResponse(resp.StatusCode, resp.Status, duration, respBody)
	c.saveAPILog(ctx, req.Method, fullURL, logBody, respBody, resp.StatusCode, duration)

	// Handle 401 Unauthorized - drop the token this request used and retry once.
	// Concurrent 401s for the same token trigger a single exchange.
	if resp.StatusCode == http.StatusUnauthorized && !isRetry {
		c.logger.Info("Received 401 Unauthorized, refreshing access token")
		c.tokenService.Invalidate(accessToken)
		return c.do(ctx, build, result, true)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: respBody}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %w", ErrDecodeResponse, err)
		}
	}

	return nil
}

func (c *httpClient) jsonRequest(method, path string, query url.Values, body interface{}) requestBuilder {
	return func(ctx context.Context) (*http.Request, []byte, error) {
		fullURL := c.baseURL + path
		if len(query) > 0 {
			fullURL += "?" + query.Encode()
		}

		var bodyReader io.Reader
		var jsonBody []byte
		if body != nil {
			var err error
			jsonBody, err = json.Marshal(body)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
			}
			bodyReader = bytes.NewReader(jsonBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		return req, jsonBody, nil
	}
}

func (c *httpClient) Get(ctx context.Context, path string, query url.Values, result interface{}) error {
	return c.execute(ctx, http.MethodGet, c.jsonRequest(http.MethodGet, path, query, nil), result)
}

func (c *httpClient) Post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.execute(ctx, http.MethodPost, c.jsonRequest(http.MethodPost, path, nil, body), result)
}

func (c *httpClient) Patch(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.execute(ctx, http.MethodPatch, c.jsonRequest(http.MethodPatch, path, nil, body), result)
}

// PostMultipart sends a multipart/form-data POST request
func (c *httpClient) PostMultipart(ctx context.Context, path string, fields map[string]string, files map[string]FileUpload, result interface{}) error {
	build := func(ctx context.Context) (*http.Request, []byte, error) {
		fullURL := c.baseURL + path

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)

		for key, value := range fields {
			if err := writer.WriteField(key, value); err != nil {
				return nil, nil, fmt.Errorf("failed to write field %s: %w", key, err)
			}
		}

		for fieldName, file := range files {
			part, err := writer.CreatePart(filePartHeader(fieldName, file))
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create form file %s: %w", fieldName, err)
			}
			if _, err := part.Write(file.Content); err != nil {
				return nil, nil, fmt.Errorf("failed to write file content %s: %w", fieldName, err)
			}
		}

		if err := writer.Close(); err != nil {
			return nil, nil, fmt.Errorf("failed to close multipart writer: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, &buf)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Accept", "application/json")

		return req, []byte(multipartSummary(fields, files)), nil
	}

	return c.execute(ctx, http.MethodPost, build, result)
}

func filePartHeader(fieldName string, file FileUpload) textproto.MIMEHeader {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(fieldName), escapeQuotes(file.Filename)))
	h.Set("Content-Type", contentType)
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// multipartSummary describes a multipart body without its file content
func multipartSummary(fields map[string]string, files map[string]FileUpload) string {
	fieldKeys := make([]string, 0, len(fields))
	for k := range fields {
		fieldKeys = append(fieldKeys, k)
	}
	sort.Strings(fieldKeys)

	fileKeys := make([]string, 0, len(files))
	for k, f := range files {
		fileKeys = append(fileKeys, fmt.Sprintf("%s(%s, %d bytes)", k, f.Filename, len(f.Content)))
	}
	sort.Strings(fileKeys)

	return "{fields: [" + strings.Join(fieldKeys, ", ") + "], files: [" + strings.Join(fileKeys, ", ") + "]}"
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// isTransient reports whether a failed call may succeed when repeated
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if apiErr, ok := AsAPIError(err); ok {
		return retry.IsRetryableStatus(apiErr.StatusCode)
	}
	// token failures are already retried by the token service
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
