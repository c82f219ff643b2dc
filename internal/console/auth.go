// ABOUTME: Login, registration and logout handlers of the console
// ABOUTME: Token storage is delegated to the session gate; forms are CSRF-protected

package console

import (
	"net/http"
	"strings"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/api"
)

// handleLoginPage renders the login page, or the registration form with ?mode=register
func (c *Console) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if c.gate.IsAuthenticated(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	r, csrfToken := c.ensureCSRFToken(w, r)
	c.renderLogin(w, r, loginData{Register: r.URL.Query().Get("mode") == "register"}, "", csrfToken)
}

func (c *Console) renderLogin(w http.ResponseWriter, r *http.Request, data loginData, errorMsg, csrfToken string) {
	data.Title = "Login"
	if data.Register {
		data.Title = "Create Account"
	}
	data.Error = errorMsg
	data.CSRFToken = csrfToken

	status := http.StatusOK
	if errorMsg != "" {
		status = http.StatusUnprocessableEntity
	}
	c.render(w, status, "login", data)
}

// handleLogin processes login form submission
func (c *Console) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLogin(w, r, loginData{}, "Invalid form data", csrfToken)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	data := loginData{Email: email}

	if !c.validateCSRF(r) {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLogin(w, r, data, "Invalid request, please try again", csrfToken)
		return
	}

	if email == "" || password == "" {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLogin(w, r, data, "Email and password required", csrfToken)
		return
	}

	if _, err := c.gate.Login(r.Context(), w, r, email, password); err != nil {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLogin(w, r, data, err.Error(), csrfToken)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRegister creates an account and signs the new tester in
func (c *Console) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLogin(w, r, loginData{Register: true}, "Invalid form data", csrfToken)
		return
	}

	reg := api.Registration{
		Email:     strings.TrimSpace(r.FormValue("email")),
		Password:  r.FormValue("password"),
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
	}
	data := loginData{Register: true, Email: reg.Email, First: reg.FirstName, Last: reg.LastName}

	if !c.validateCSRF(r) {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLogin(w, r, data, "Invalid request, please try again", csrfToken)
		return
	}

	if reg.Email == "" || reg.Password == "" {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLogin(w, r, data, "Email and password required", csrfToken)
		return
	}

	if reg.Password != r.FormValue("confirm_password") {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLogin(w, r, data, "Passwords do not match", csrfToken)
		return
	}

	if _, err := c.gate.Register(r.Context(), reg); err != nil {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLogin(w, r, data, err.Error(), csrfToken)
		return
	}

	if _, err := c.gate.Login(r.Context(), w, r, reg.Email, reg.Password); err != nil {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLogin(w, r, loginData{Email: reg.Email}, err.Error(), csrfToken)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout drops the token and CSRF cookies
func (c *Console) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		// Don't block logout on a bad token
		if !c.validateCSRF(r) {
			c.logger.Warn("logout request with invalid CSRF token")
		}
	}

	c.gate.Logout(w, r)
	clearCSRF(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
