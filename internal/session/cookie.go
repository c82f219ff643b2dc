// ABOUTME: Single named cookie holding the bearer token
// ABOUTME: Path=/, HttpOnly, SameSite=Lax, Secure over TLS, expiring after a configured TTL

package session

import (
	"net/http"
	"time"
)

// CookieStore reads and writes one cookie.
type CookieStore struct {
	Name string
	TTL  time.Duration
}

// Get returns the cookie's value and whether it is present and non-empty.
func (s CookieStore) Get(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Set stores value, expiring after TTL.
func (s CookieStore) Set(w http.ResponseWriter, r *http.Request, value string) {
	c := &http.Cookie{
		Name:     s.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   r != nil && r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if s.TTL > 0 {
		c.Expires = time.Now().Add(s.TTL)
		c.MaxAge = int(s.TTL.Seconds())
	}
	http.SetCookie(w, c)
}

// Delete expires the cookie in the browser.
func (s CookieStore) Delete(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   r != nil && r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
