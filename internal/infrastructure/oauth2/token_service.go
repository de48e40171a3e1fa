package oauth2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"signit-esign/internal/config"
	"signit-esign/internal/domain/apperr"
	"signit-esign/internal/infrastructure/retry"
)

const tokenPath = "/oauth/token"

// ErrInvalidCredentials is returned when SignIt rejects the client credentials.
// Retrying with the same credentials cannot succeed.
var ErrInvalidCredentials = errors.New("invalid client credentials")

// TokenResponse represents the OAuth2 token response from SignIt
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// TokenService hands out bearer tokens obtained with the client-credentials grant
type TokenService interface {
	// GetAccessToken returns the cached token, exchanging credentials when it is
	// absent or within the safety margin of expiry
	GetAccessToken(ctx context.Context) (string, error)

	// Invalidate drops the cached token if it is still stale, so the next call
	// performs an exchange. A token refreshed in the meantime is kept.
	Invalidate(stale string)
}

type tokenService struct {
	config *config.Config
	logger *zap.Logger
	client *http.Client
	policy retry.Policy
	now    func() time.Time

	mu          sync.RWMutex
	accessToken string
	expiresAt   time.Time

	// one exchange in flight at a time, concurrent callers share its result
	group singleflight.Group
}

func NewTokenService(cfg *config.Config, logger *zap.Logger) TokenService {
	return &tokenService{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: cfg.SignIt.Timeout(),
		},
		policy: retry.NewPolicy(cfg),
		now:    time.Now,
	}
}

func (s *tokenService) GetAccessToken(ctx context.Context) (string, error) {
	if token, ok := s.cached(); ok {
		return token, nil
	}

	// The exchange outlives a single caller's cancellation because other
	// callers may be waiting on it.
	ch := s.group.DoChan("token", func() (interface{}, error) {
		if token, ok := s.cached(); ok {
			return token, nil
		}

		exchangeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.exchangeTimeout())
		defer cancel()

		return s.exchange(exchangeCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *tokenService) Invalidate(stale string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken == "" || s.accessToken != stale {
		return
	}

	s.accessToken = ""
	s.expiresAt = time.Time{}

	s.logger.Info("Access token invalidated")
}

func (s *tokenService) cached() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.accessToken != "" && s.now().Before(s.expiresAt) {
		return s.accessToken, true
	}
	return "", false
}

func (s *tokenService) exchangeTimeout() time.Duration {
	// every attempt may use the full client timeout
	timeout := s.config.SignIt.Timeout() * time.Duration(s.policy.MaxRetries+1)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return timeout
}

func (s *tokenService) exchange(ctx context.Context) (string, error) {
	s.logger.Info("Requesting access token",
		zap.String("client_id", s.config.SignIt.Credentials.ClientID),
		zap.String("scopes", s.config.SignIt.Scopes),
	)

	tokenResp, err := retry.Do(ctx, s.policy, func() (*TokenResponse, error) {
		return s.requestToken(ctx)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return "", apperr.Unauthorized("Invalid client credentials").Wrap(err)
		}
		return "", apperr.Internal("Failed to obtain access token", err)
	}

	fetchedAt := s.now()
	expiresAt := fetchedAt.Add(s.lifetime(tokenResp.ExpiresIn))

	s.mu.Lock()
	s.accessToken = tokenResp.AccessToken
	s.expiresAt = expiresAt
	s.mu.Unlock()

	s.logger.Info("Access token obtained",
		zap.Int("expires_in", tokenResp.ExpiresIn),
		zap.Time("reuse_until", expiresAt),
	)

	return tokenResp.AccessToken, nil
}

// lifetime is how long a token is reused: expires_in minus the safety margin.
// Tokens shorter than the margin are reused for half of their lifetime.
func (s *tokenService) lifetime(expiresIn int) time.Duration {
	full := time.Duration(expiresIn) * time.Second
	reuse := full - s.config.SignIt.TokenMargin()
	if reuse <= 0 {
		reuse = full / 2
	}
	return reuse
}

func (s *tokenService) requestToken(ctx context.Context) (*TokenResponse, error) {
	tokenURL := s.config.SignIt.APIURL + tokenPath

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", s.config.SignIt.Scopes)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.SetBasicAuth(s.config.SignIt.Credentials.ClientID, s.config.SignIt.Credentials.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	s.logger.Debug(">>> [SIGNIT-TOKEN-REQ]",
		zap.String("url", tokenURL),
		zap.String("grant_type", "client_credentials"),
	)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	s.logger.Debug(">>> [SIGNIT-TOKEN-RESPONSE]",
		zap.Int("status", resp.StatusCode),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, retry.Permanent(ErrInvalidCredentials)
	case retry.IsRetryableStatus(resp.StatusCode) || resp.StatusCode >= 500:
		return nil, fmt.Errorf("token request failed: status=%d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, retry.Permanent(fmt.Errorf("token request failed: status=%d, body=%s", resp.StatusCode, string(respBody)))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to unmarshal token response: %w", err))
	}
	if tokenResp.AccessToken == "" {
		return nil, retry.Permanent(errors.New("token response missing access_token"))
	}

	return &tokenResp, nil
}
