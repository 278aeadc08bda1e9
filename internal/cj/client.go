package cj

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/config"
	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/pkg/errors"
)

// tokenCacheService is the key under which CJ tokens are cached.
const tokenCacheService = "cj-dropshipping"

// Default validity windows when the provider response omits expiry dates.
// The refresh token is long-lived so full re-authentication (which the
// provider rate-limits aggressively) stays rare.
const (
	defaultAccessTokenTTL  = 15 * 24 * time.Hour
	defaultRefreshTokenTTL = 180 * 24 * time.Hour
)

// Client is the single authenticated gateway to the CJ Dropshipping API.
type Client struct {
	baseURL      string
	email        string
	apiKey       string
	shipmentType string
	httpClient   *http.Client
	tokens       repository.TokenCacheRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewClient creates a new CJ Dropshipping client
func NewClient(cfg config.CJConfig, tokens repository.TokenCacheRepository, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		email:        cfg.Email,
		apiKey:       cfg.APIKey,
		shipmentType: cfg.ShipmentType,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// apiResponse is the provider's uniform response envelope.
type apiResponse struct {
	Code    int             `json:"code"`
	Result  bool            `json:"result"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type authData struct {
	AccessToken        string `json:"accessToken"`
	AccessTokenExpiry  string `json:"accessTokenExpiryDate"`
	RefreshToken       string `json:"refreshToken"`
	RefreshTokenExpiry string `json:"refreshTokenExpiryDate"`
}

// AccessToken returns a valid bearer token, reusing the cached one when it
// has not expired. On miss it prefers the refresh-token path over a full
// re-authentication to avoid provider rate limits.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	now := c.now()

	cached, err := c.tokens.Get(ctx, tokenCacheService)
	if err == nil && cached.AccessToken != "" && cached.AccessTokenExpiry.After(now.Add(time.Minute)) {
		return cached.AccessToken, nil
	}
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); !ok {
			// Cache read failure shouldn't block the call; fall through to auth.
			c.logger.Warn("Token cache read failed, re-authenticating", zap.Error(err))
		}
		cached = nil
	}

	if cached != nil && cached.RefreshToken != "" && cached.RefreshTokenExpiry.After(now.Add(time.Minute)) {
		token, refreshErr := c.refreshAccessToken(ctx, cached.RefreshToken)
		if refreshErr == nil {
			return token, nil
		}
		c.logger.Warn("Refresh token path failed, falling back to authentication", zap.Error(refreshErr))
	}

	return c.authenticate(ctx)
}

// authenticate exchanges the API key for a fresh access + refresh token pair.
func (c *Client) authenticate(ctx context.Context) (string, error) {
	body := map[string]string{
		"email":    c.email,
		"password": c.apiKey,
	}
	data, err := c.post(ctx, "/authentication/getAccessToken", body, "")
	if err != nil {
		return "", err
	}
	return c.storeAuthData(ctx, data)
}

// refreshAccessToken exchanges the long-lived refresh token for a new access token.
func (c *Client) refreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	body := map[string]string{
		"refreshToken": refreshToken,
	}
	data, err := c.post(ctx, "/authentication/refreshAccessToken", body, "")
	if err != nil {
		return "", err
	}
	return c.storeAuthData(ctx, data)
}

func (c *Client) storeAuthData(ctx context.Context, data json.RawMessage) (string, error) {
	var auth authData
	if err := json.Unmarshal(data, &auth); err != nil || auth.AccessToken == "" {
		return "", errors.Internal("cj: malformed authentication response", err)
	}

	now := c.now()
	token := &domain.CachedToken{
		Service:            tokenCacheService,
		AccessToken:        auth.AccessToken,
		AccessTokenExpiry:  parseExpiry(auth.AccessTokenExpiry, now.Add(defaultAccessTokenTTL)),
		RefreshToken:       auth.RefreshToken,
		RefreshTokenExpiry: parseExpiry(auth.RefreshTokenExpiry, now.Add(defaultRefreshTokenTTL)),
	}
	if err := c.tokens.Upsert(ctx, token); err != nil {
		// The token is still valid for this request even if caching failed.
		c.logger.Warn("Failed to cache CJ access token", zap.Error(err))
	}

	return auth.AccessToken, nil
}

func parseExpiry(s string, fallback time.Time) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}

// post sends a JSON POST to the provider and unwraps its response envelope.
func (c *Client) post(ctx context.Context, path string, body interface{}, accessToken string) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Internal("cj: failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Internal("cj: failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("CJ-Access-Token", accessToken)
	}

	return c.do(req)
}

// get sends a GET with query params to the provider and unwraps its envelope.
func (c *Client) get(ctx context.Context, path string, params url.Values, accessToken string) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Internal("cj: failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if accessToken != "" {
		req.Header.Set("CJ-Access-Token", accessToken)
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Internal("cj: request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Internal("cj: failed to read response", err)
	}

	// A body that is not a well-formed envelope object is a protocol
	// violation, not a business error.
	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Internal(fmt.Sprintf("cj: malformed response (status %d)", resp.StatusCode), err)
	}

	if !envelope.Result || envelope.Code != 200 {
		return nil, classifyProviderError(envelope.Code, envelope.Message)
	}

	return envelope.Data, nil
}

// classifyProviderError translates provider error text into the error
// taxonomy. Rate-limit signals get their own kind so callers can back off.
func classifyProviderError(code int, message string) error {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "too many requests") || strings.Contains(lower, "qps limit") {
		return &errors.ErrTooManyRequests{Message: fmt.Sprintf("cj: %s", message)}
	}
	return &errors.ErrInternal{Message: fmt.Sprintf("cj: provider error (code %d): %s", code, message)}
}
