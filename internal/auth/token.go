// ABOUTME: JWT issuing and verification for the stub test-management API
// ABOUTME: HS256 tokens carrying the tester's id, email and name

package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// Identity is who a token was issued to.
type Identity struct {
	TesterID  int64
	Email     string
	FirstName string
	LastName  string
}

// TokenVerifier defines the interface for token verification
type TokenVerifier interface {
	Verify(tokenString string) (*Identity, error)
}

// JWTIssuer signs and verifies HS256 tokens.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer creates an issuer whose tokens live for ttl.
func NewJWTIssuer(secret []byte, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Verify validates the token and extracts the identity from its claims
func (v *JWTIssuer) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: sub is not a tester id", ErrInvalidToken)
	}

	ident := &Identity{TesterID: id}
	ident.Email, _ = claims["email"].(string)
	ident.FirstName, _ = claims["first_name"].(string)
	ident.LastName, _ = claims["last_name"].(string)
	return ident, nil
}

// Generate creates a signed token for ident.
func (v *JWTIssuer) Generate(ident Identity) (string, error) {
	now := v.now()
	claims := jwt.MapClaims{
		"sub":        strconv.FormatInt(ident.TesterID, 10),
		"email":      ident.Email,
		"first_name": ident.FirstName,
		"last_name":  ident.LastName,
		"jti":        uuid.NewString(),
		"iat":        now.Unix(),
		"exp":        now.Add(v.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
