// ABOUTME: Auth/session gate keeping the bearer token in a browser cookie
// ABOUTME: Login, registration, logout and the authenticated/current-user checks

package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/api"
)

// DefaultCookieName is the cookie the bearer token lives in.
const DefaultCookieName = "access_token"

// DefaultTTL is how long the token cookie lives.
const DefaultTTL = 24 * time.Hour

// Authenticator is the part of the API client the gate needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Register(ctx context.Context, reg api.Registration) (api.Record, error)
}

// Config controls the token cookie.
type Config struct {
	CookieName string
	TTL        time.Duration
}

// Gate stores the token handed out by the API and answers whether a
// request is signed in.
type Gate struct {
	auth    Authenticator
	cookies CookieStore
	logger  *slog.Logger
}

// NewGate creates a gate backed by auth.
func NewGate(auth Authenticator, cfg Config) *Gate {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	return &Gate{
		auth:    auth,
		cookies: CookieStore{Name: cfg.CookieName, TTL: cfg.TTL},
		logger:  slog.Default().With("component", "session"),
	}
}

// CookieName is the name of the token cookie.
func (g *Gate) CookieName() string {
	return g.cookies.Name
}

// Login authenticates against the API and, on success, stores the access
// token in the cookie. Errors read "Login failed" or the server's message.
func (g *Gate) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, email, password string) (*api.LoginResponse, error) {
	resp, err := g.auth.Login(ctx, email, password)
	if err != nil {
		g.logger.Info("login rejected", "email", email, "status", api.StatusCode(err))
		return nil, err
	}
	g.cookies.Set(w, r, resp.AccessToken)
	g.logger.Info("login successful", "email", email)
	return resp, nil
}

// Register creates a tester account. It does not sign the tester in.
func (g *Gate) Register(ctx context.Context, reg api.Registration) (api.Record, error) {
	rec, err := g.auth.Register(ctx, reg)
	if err != nil {
		g.logger.Info("registration rejected", "email", reg.Email, "status", api.StatusCode(err))
		return nil, err
	}
	g.logger.Info("tester registered", "email", reg.Email)
	return rec, nil
}

// Logout removes the token cookie.
func (g *Gate) Logout(w http.ResponseWriter, r *http.Request) {
	g.cookies.Delete(w, r)
}

// IsAuthenticated reports whether the request carries a non-empty token.
// Expiry and signature are left to the API.
func (g *Gate) IsAuthenticated(r *http.Request) bool {
	_, ok := g.cookies.Get(r)
	return ok
}

// Token returns the raw bearer token, or "".
func (g *Gate) Token(r *http.Request) string {
	tok, _ := g.cookies.Get(r)
	return tok
}

// CurrentUser decodes the token's claims, or returns nil.
func (g *Gate) CurrentUser(r *http.Request) *Claims {
	return DecodeClaims(g.Token(r))
}
