// ABOUTME: Error types returned by the REST client
// ABOUTME: Keeps the generic "Failed to ..." wording while exposing status and server message

package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRequestFailed is wrapped by every error the client returns.
	ErrRequestFailed = errors.New("request failed")

	// ErrLoginFailed marks a failed auth/login call.
	ErrLoginFailed = errors.New("Login failed")

	// ErrRegistrationFailed marks a failed testers/register call.
	ErrRegistrationFailed = errors.New("Registration failed")
)

// Operation names carried by RequestError.
const (
	OpFetch    = "fetch"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpLogin    = "login"
	OpRegister = "register"
)

// RequestError describes one failed API call.
type RequestError struct {
	Op         string
	Resource   string
	StatusCode int    // 0 when the request never got a response
	Message    string // detail/message/error from the response body, if any
	Err        error
}

func (e *RequestError) Error() string {
	switch e.Op {
	case OpLogin:
		if e.Message != "" {
			return e.Message
		}
		return ErrLoginFailed.Error()
	case OpRegister:
		if e.Message != "" {
			return e.Message
		}
		return ErrRegistrationFailed.Error()
	}

	msg := "Failed to " + e.Op
	if e.Resource != "" {
		msg += " " + e.Resource
	}
	switch {
	case e.Message != "":
		msg += ": " + e.Message
	case e.StatusCode != 0:
		msg += fmt.Sprintf(": %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrRequestFailed:
		return true
	case ErrLoginFailed:
		return e.Op == OpLogin
	case ErrRegistrationFailed:
		return e.Op == OpRegister
	}
	return false
}

// IsUnauthorized reports whether err is an API rejection of the bearer token.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var rerr *RequestError
	if errors.As(err, &rerr) {
		return rerr.StatusCode
	}
	return 0
}
