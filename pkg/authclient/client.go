/**
 * @description
 * This package provides a client for the external identity provider's
 * email/password endpoints. The provider issues opaque session tokens; this
 * client never interprets them, it only carries them.
 *
 * Key features:
 * - Sign-up, sign-in, and sign-out calls against the provider's HTTP API.
 * - Distinguishes rejected credentials from transport and provider failures.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, time: Standard Go libraries.
 * - The service's internal domain package for the credential-rejection sentinel.
 */
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/horizonbank/horizon-api/internal/domain"
)

// Client is a client for the identity provider's auth API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new identity provider client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// AuthUser is the provider's view of an account.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is the provider's response to a successful sign-in or sign-up:
// an opaque session token plus the account it belongs to.
type Session struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp creates a provider account and an initial session.
func (c *Client) SignUp(ctx context.Context, name, email, password string) (*Session, error) {
	var session Session
	url := fmt.Sprintf("%s/api/auth/sign-up/email", c.baseURL)
	if err := c.do(ctx, url, signUpRequest{Name: name, Email: email, Password: password}, "", &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignIn authenticates an existing account. Rejected credentials surface as
// domain.ErrInvalidCredentials.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	url := fmt.Sprintf("%s/api/auth/sign-in/email", c.baseURL)
	if err := c.do(ctx, url, signInRequest{Email: email, Password: password}, "", &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut invalidates the session behind the given token on the provider
// side. The token travels in the provider's session cookie.
func (c *Client) SignOut(ctx context.Context, token string) error {
	url := fmt.Sprintf("%s/api/auth/sign-out", c.baseURL)
	return c.do(ctx, url, struct{}{}, token, nil)
}

// do posts a JSON body and decodes the JSON response into target.
func (c *Client) do(ctx context.Context, url string, body interface{}, sessionToken string, target interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: "better-auth.session_token", Value: sessionToken})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: provider returned status %d", domain.ErrInvalidCredentials, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Identity provider returned non-success status code %d: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("identity provider error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if target != nil {
		if err := json.Unmarshal(respBody, target); err != nil {
			return fmt.Errorf("failed to unmarshal response body: %w", err)
		}
	}
	return nil
}
