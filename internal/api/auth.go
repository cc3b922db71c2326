package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"maplebudget/internal/core"
)

// Credentials are an email and a password.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, cred Credentials) (*core.User, error) {
	var u core.User
	if err := c.do(ctx, http.MethodPost, "/auth/register", cred, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login exchanges credentials for a token and stores it. The API expects an
// OAuth2 password form with the email as username.
func (c *Client) Login(ctx context.Context, cred Credentials) (*core.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", cred.Email)
	form.Set("password", cred.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok core.TokenResponse
	if err := c.send(req, &tok, badLoginMessage); err != nil {
		return nil, err
	}
	if err := c.tokens.Set(ctx, tok.AccessToken); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	return &tok, nil
}

// Logout forgets the stored token.
func (c *Client) Logout(ctx context.Context) error {
	return c.tokens.Clear(ctx)
}

// Me returns the logged-in user.
func (c *Client) Me(ctx context.Context) (*core.User, error) {
	var u core.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
