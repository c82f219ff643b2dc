// Package fakeapi is a working stand-in for the test-management REST API.
//
// It serves the same contract as the real backend under /api/v1: JSON
// login and registration, testers/me, executions/run/{id}, and list, get,
// create (POST), update (PATCH) and delete on every entity collection of
// entity.Default(). Records live in a store.Store; bodies are checked
// against the entity's record type and rejected with 422 when they carry
// unknown fields, mistyped values or miss a required field.
//
// Errors use the backend's {"detail": "..."} shape so clients see the same
// messages they would in production.
package fakeapi
