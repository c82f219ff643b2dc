// Package api is the HTTP client for the test-management REST API.
//
// A Client is rooted at a versioned base URL and maps each CRUD verb onto
// one REST path segment:
//
//	List    GET    base/resource
//	Get     GET    base/resource/{id}
//	Create  POST   base/resource
//	Update  PATCH  base/resource/{id}
//	Delete  DELETE base/resource/{id}
//
// Every request carries Content-Type: application/json, and an
// Authorization: Bearer header only when a token is available. The token is
// never global: bind it per request with WithToken or supply a TokenSource.
//
// Failures are reported as *RequestError values that wrap ErrRequestFailed.
// Response bodies of failed calls are never decoded into results.
package api
