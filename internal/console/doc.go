// Package console serves the testdesk web console.
//
// # Pages
//
//   - /login, /register, /logout: token cookie handling through session.Gate
//   - /: dashboard with the ten most recent runs
//   - /test-management: hub listing every entity by group
//   - /{slug}: list page of one entity, with its create form when the
//     entity supports create; /{slug}/{id}/edit, POST /{slug}/{id} and
//     POST /{slug}/{id}/delete when it supports update and delete
//   - /help/{page}: embedded markdown topics
//
// Entity pages are generated from entity.Registry; there is no per-entity
// handler. Unknown slugs get 404 and verbs the entity lacks get 405.
//
// # Authentication
//
// The console never checks tokens itself. A request is signed in when it
// carries a non-empty token cookie; when the API answers 401 the cookie is
// dropped and the visitor is sent to /login.
//
// Every POST carries a csrf_token form field matching the CSRF cookie.
//
// # Filters
//
// Entities with filters (executions) get tabs and count cards. Filters are
// expr-lang predicates over the record's fields plus "pending", the
// configured pending status id.
package console
