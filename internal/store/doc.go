// Package store persists the records and tester accounts of the stub
// test-management API.
//
// # Records
//
// Every entity collection ("scenarios", "runs", ...) is stored the same way:
// a JSON object per row, keyed by collection and an integer id the store
// assigns. Ids come from a per-collection sequence, so a deleted id is never
// handed out again. Updates merge the given fields into the stored object;
// the "id" field is owned by the store and cannot be changed.
//
// # Testers
//
// Tester accounts live in their own table with a unique email and a bcrypt
// password hash produced by the caller.
//
// # Implementations
//
// SQLiteStore runs on modernc.org/sqlite:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Use NewSQLiteStore(":memory:") for a throwaway database. MockStore is an
// in-memory Store for unit tests.
//
// Common errors:
//
//   - ErrNotFound: requested record or tester does not exist
//   - ErrEmailExists: a tester with that email is already registered
package store
