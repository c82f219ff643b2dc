// ABOUTME: Web console for the test-management API: routes, auth guard and CSRF
// ABOUTME: Pages call the API with the bearer token kept in the visitor's cookie

package console

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/api"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/entity"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/session"
)

const (
	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "testdesk_csrf"

	// DashboardRuns is how many runs the dashboard shows.
	DashboardRuns = 10
)

type contextKey string

const csrfContextKey contextKey = "csrf_token"

// Config holds console settings.
type Config struct {
	// PendingStatusID is the status id execution filters treat as pending.
	PendingStatusID int64
}

// Console serves the console pages.
type Console struct {
	client   *api.Client
	gate     *session.Gate
	registry *entity.Registry
	filters  map[string][]compiledFilter
	config   Config
	logger   *slog.Logger
}

// New creates a console. client must point at the API base URL; gate keeps
// the token cookie.
func New(client *api.Client, gate *session.Gate, registry *entity.Registry, cfg Config) (*Console, error) {
	c := &Console{
		client:   client,
		gate:     gate,
		registry: registry,
		filters:  make(map[string][]compiledFilter),
		config:   cfg,
		logger:   slog.Default().With("component", "console"),
	}

	for _, d := range registry.All() {
		if len(d.Filters) == 0 {
			continue
		}
		compiled, err := compileFilters(d.Filters)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", d.Name, err)
		}
		c.filters[d.Slug] = compiled
	}
	return c, nil
}

// RegisterRoutes registers all console routes on the given mux
func (c *Console) RegisterRoutes(mux *http.ServeMux) {
	// Public routes (no auth required)
	mux.HandleFunc("GET /login", c.handleLoginPage)
	mux.HandleFunc("POST /login", c.handleLogin)
	mux.HandleFunc("POST /register", c.handleRegister)
	mux.HandleFunc("GET /static/{file}", c.handleStatic)

	// Protected routes (auth required)
	mux.HandleFunc("POST /logout", c.handleLogout)
	mux.HandleFunc("GET /{$}", c.requireAuth(c.handleDashboard))
	mux.HandleFunc("GET /test-management", c.requireAuth(c.handleHub))
	mux.HandleFunc("GET /help", c.requireAuth(c.handleHelpIndex))
	mux.HandleFunc("GET /help/{page}", c.requireAuth(c.handleHelp))

	// Entity pages, one handler set for every registry entry
	mux.HandleFunc("GET /{slug}", c.requireAuth(c.handleEntityList))
	mux.HandleFunc("POST /{slug}", c.requireAuth(c.handleEntityCreate))
	mux.HandleFunc("GET /{slug}/{id}/edit", c.requireAuth(c.handleEntityEdit))
	mux.HandleFunc("POST /{slug}/{id}", c.requireAuth(c.handleEntityUpdate))
	mux.HandleFunc("POST /{slug}/{id}/delete", c.requireAuth(c.handleEntityDelete))

	c.logger.Info("console routes registered", "entities", len(c.registry.All()))
}

// Handler returns a mux with every console route, wrapped in request logging.
func (c *Console) Handler() http.Handler {
	mux := http.NewServeMux()
	c.RegisterRoutes(mux)
	return c.logRequests(mux)
}

// requireAuth wraps a handler to require a token cookie
func (c *Console) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !c.gate.IsAuthenticated(r) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		r, _ = c.ensureCSRFToken(w, r)
		next(w, r)
	}
}

// apiFor returns a client carrying the request's bearer token.
func (c *Console) apiFor(r *http.Request) *api.Client {
	return c.client.WithToken(c.gate.Token(r))
}

// rejected handles an API 401 by dropping the token and sending the visitor
// to the login page. It reports whether it wrote a response.
func (c *Console) rejected(w http.ResponseWriter, r *http.Request, err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}
	c.logger.Info("token rejected by API, signing out", "path", r.URL.Path)
	c.gate.Logout(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

// getCSRFToken retrieves the CSRF token from the request context
func getCSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey).(string)
	return token
}

// ensureCSRFToken generates a CSRF token if not present and adds it to context
func (c *Console) ensureCSRFToken(w http.ResponseWriter, r *http.Request) (*http.Request, string) {
	cookie, err := r.Cookie(CSRFCookieName)
	if err == nil && cookie.Value != "" {
		ctx := context.WithValue(r.Context(), csrfContextKey, cookie.Value)
		return r.WithContext(ctx), cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		c.logger.Error("failed to generate CSRF token", "error", err)
		token = "" // Will fail validation, but won't crash
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	ctx := context.WithValue(r.Context(), csrfContextKey, token)
	return r.WithContext(ctx), token
}

// validateCSRF checks the CSRF token from form against cookie
func (c *Console) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	formToken := r.FormValue("csrf_token")
	if formToken == "" {
		formToken = r.Header.Get("X-CSRF-Token")
	}

	return formToken != "" && formToken == cookie.Value
}

// clearCSRF drops the CSRF cookie.
func clearCSRF(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
