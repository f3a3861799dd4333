package api

import (
	"context"
	"net/http"
)

// Credentials is the login/registration payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Company  string `json:"company,omitempty"`
}

// AuthResult is what the backend hands back on successful auth.
type AuthResult struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	ExpiresAt string `json:"expires_at"`
}

// Login authenticates and returns the session credentials.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/v1/login", Credentials{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Register creates an account with a fresh company and returns the
// session credentials.
func (c *Client) Register(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/register", creds, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}
