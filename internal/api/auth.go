// ABOUTME: Authentication endpoints of the REST API
// ABOUTME: Login, tester registration and the current tester profile

package api

import (
	"context"
	"net/http"
)

// LoginRequest is the body of POST auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Registration is the body of POST testers/register.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Tester is a registered user as returned by testers/me.
type Tester struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Active    bool   `json:"active"`
	CreatedAt *Time  `json:"created_at,omitempty"`
}

// Login exchanges credentials for a bearer token. It never sends an
// Authorization header. A response without access_token counts as a failure.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.anonymous().do(ctx, OpLogin, "auth/login", http.MethodPost, "auth/login",
		LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &RequestError{Op: OpLogin, Resource: "auth/login", StatusCode: http.StatusOK}
	}
	return &out, nil
}

// Register creates a tester account and returns the server's record.
func (c *Client) Register(ctx context.Context, reg Registration) (Record, error) {
	var out Record
	err := c.anonymous().do(ctx, OpRegister, "testers/register", http.MethodPost, "testers/register", reg, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Me returns the tester the current token belongs to.
func (c *Client) Me(ctx context.Context) (*Tester, error) {
	var out Tester
	if err := c.do(ctx, OpFetch, "testers/me", http.MethodGet, "testers/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
