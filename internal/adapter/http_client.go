package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/the-momentum/open-wearables-sync/models"
)

const (
	syncPath    = "/api/v1/sync"
	refreshPath = "/api/v1/token/refresh"
)

// HTTPClientConfig configures the HTTP implementation of [RemoteAdapter].
type HTTPClientConfig struct {
	BaseURL      string
	APIKeyHeader string
	Timeout      time.Duration
}

type httpRemoteAdapter struct {
	client       *resty.Client
	apiKeyHeader string

	mu   sync.RWMutex
	cred models.Credential
}

// NewHTTPRemoteAdapter constructs a resty-backed [RemoteAdapter] for the
// given collection endpoint.
func NewHTTPRemoteAdapter(cfg HTTPClientConfig) RemoteAdapter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "X-Api-Key"
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &httpRemoteAdapter{client: cli, apiKeyHeader: cfg.APIKeyHeader}
}

func (h *httpRemoteAdapter) SetCredential(cred models.Credential) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cred = cred
}

func (h *httpRemoteAdapter) credential() models.Credential {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cred
}

func (h *httpRemoteAdapter) SendRaw(ctx context.Context, payload []byte) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(syncPath)
	if err != nil {
		return fmt.Errorf("send staged chunk request: %w: %w", ErrRemoteUnavailable, err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteAdapter) RefreshToken(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.TokenRefreshRequest{RefreshToken: refreshToken}).
		Post(refreshPath)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("refresh token request: %w: %w", ErrRemoteUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.TokenPair{}, err
	}

	var body models.TokenRefreshResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return models.TokenPair{}, fmt.Errorf("decode refresh response: %w", err)
	}
	if body.AccessToken == "" {
		return models.TokenPair{}, fmt.Errorf("refresh response missing access token: %w", ErrRejected)
	}

	return models.TokenPair{AccessToken: body.AccessToken, RefreshToken: body.RefreshToken}, nil
}

func (h *httpRemoteAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)

	cred := h.credential()
	switch cred.Mode() {
	case models.AuthModeAPIKey:
		req.SetHeader(h.apiKeyHeader, cred.APIKey)
	default:
		if cred.AccessToken != "" {
			req.SetHeader("Authorization", "Bearer "+cred.AccessToken)
		}
	}

	return req
}

func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(code)
	}

	switch {
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code >= http.StatusBadRequest && code < http.StatusInternalServerError:
		return fmt.Errorf("http %d: %s: %w", code, body, ErrRejected)
	default:
		return fmt.Errorf("http %d: %s: %w", code, body, ErrRemoteUnavailable)
	}
}
