// ABOUTME: Unverified decoding of the bearer token's claims for display purposes
// ABOUTME: Malformed or absent tokens yield nil, never an error

package session

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the console shows about the signed-in tester. It is read
// from the token without checking the signature; the API remains the only
// authority on whether the token is valid.
type Claims struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
	ExpiresAt *time.Time
}

// DisplayName prefers the full name, then the email, then the subject.
func (c *Claims) DisplayName() string {
	if c == nil {
		return ""
	}
	if name := strings.TrimSpace(c.FirstName + " " + c.LastName); name != "" {
		return name
	}
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

// Expired reports whether the token's exp claim lies in the past.
func (c *Claims) Expired(now time.Time) bool {
	return c != nil && c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// DecodeClaims parses the token payload without verification.
func DecodeClaims(token string) *Claims {
	if token == "" {
		return nil
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil
	}

	c := &Claims{
		Email:     stringClaim(mc, "email"),
		FirstName: stringClaim(mc, "first_name"),
		LastName:  stringClaim(mc, "last_name"),
	}
	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	// Some issuers put a numeric id in sub.
	if c.Subject == "" {
		if f, ok := mc["sub"].(float64); ok {
			c.Subject = strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		c.ExpiresAt = &t
	}
	return c
}

func stringClaim(mc jwt.MapClaims, key string) string {
	s, _ := mc[key].(string)
	return s
}
