package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/logging"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
	refreshPath  = "/auth/refresh"
	logoutPath   = "/auth/logout"
	googlePath   = "/auth/google"

	// maxErrorBody bounds how much of an error response is kept for messages.
	maxErrorBody = 4 << 10
)

var ErrMalformedResponse = errors.New("malformed token response")

type AuthClient struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

var _ AuthService = (*AuthClient)(nil)

// NewAuthClient returns a client for the authentication endpoints under
// baseURL. hc must not be the session's decorated client.
func NewAuthClient(baseURL string, hc *http.Client, logger logging.Logger) *AuthClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		logger:  logger.With("component", "auth_client"),
	}
}

func (c *AuthClient) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	req := models.LoginRequest{Email: email, Password: password}
	return c.tokens(ctx, "login", loginPath, req, true)
}

func (c *AuthClient) Register(ctx context.Context, email, password, displayName string) (models.TokenPair, error) {
	req := models.LoginRequest{Email: email, Password: password, DisplayName: displayName}
	return c.tokens(ctx, "register", registerPath, req, true)
}

func (c *AuthClient) LoginWithGoogle(ctx context.Context, idToken string) (models.TokenPair, error) {
	return c.tokens(ctx, "google login", googlePath, models.GoogleLoginRequest{IDToken: idToken}, true)
}

// Refresh exchanges a refresh credential for a new pair. Any non-2xx
// response is returned as an error; the caller decides what that means.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	return c.tokens(ctx, "refresh", refreshPath, models.RefreshRequest{RefreshToken: refreshToken}, false)
}

// Logout asks the server to revoke refreshToken.
func (c *AuthClient) Logout(ctx context.Context, refreshToken string) error {
	resp, err := c.post(ctx, logoutPath, models.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode/100 != 2 {
		return NewStatusError("logout", resp.StatusCode, readMessage(resp))
	}
	return nil
}

func (c *AuthClient) tokens(ctx context.Context, op, path string, body any, login bool) (models.TokenPair, error) {
	resp, err := c.post(ctx, path, body)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	defer drain(resp)

	if resp.StatusCode/100 != 2 {
		se := NewStatusError(op, resp.StatusCode, readMessage(resp))
		if login {
			se = credentialsError(se)
		}
		c.logger.Debug(ctx, "auth request rejected", "op", op, "status", resp.StatusCode)
		return models.TokenPair{}, se
	}

	var pair models.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
	}
	if !pair.Complete() {
		return models.TokenPair{}, fmt.Errorf("%s: %w: missing token", op, ErrMalformedResponse)
	}
	return pair, nil
}

func (c *AuthClient) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	return resp, nil
}

// readMessage extracts {"error": "..."} from an error body, falling back to
// the raw (truncated) text.
func readMessage(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(b))
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
