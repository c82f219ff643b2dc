// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Keeps JSON records per collection and tester accounts with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed; ":memory:" opens a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	inMemory := path == ":memory:"
	if !inMemory {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to :memory: is its own database
	if inMemory {
		db.SetMaxOpenConns(1)
	} else {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			id INTEGER NOT NULL,
			body TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (collection, id)
		);

		CREATE TABLE IF NOT EXISTS sequences (
			collection TEXT PRIMARY KEY,
			last_id INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS testers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_testers_email ON testers(email);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// ListRecords returns every record of a collection in id order.
func (s *SQLiteStore) ListRecords(ctx context.Context, collection string) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM records WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	return scanBodies(rows)
}

// ListRecordsWhere returns the records whose integer field equals value.
func (s *SQLiteStore) ListRecordsWhere(ctx context.Context, collection, field string, value int64) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM records WHERE collection = ? AND json_extract(body, ?) = ? ORDER BY id`,
		collection, "$."+field, value)
	if err != nil {
		return nil, fmt.Errorf("querying %s by %s: %w", collection, field, err)
	}
	return scanBodies(rows)
}

func scanBodies(rows *sql.Rows) ([]json.RawMessage, error) {
	defer rows.Close()

	out := []json.RawMessage{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		out = append(out, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return out, nil
}

// GetRecord retrieves one record.
// Returns ErrNotFound if it doesn't exist.
func (s *SQLiteStore) GetRecord(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	return getRecord(ctx, s.db, collection, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getRecord(ctx context.Context, q queryRower, collection string, id int64) (json.RawMessage, error) {
	var body string
	err := q.QueryRowContext(ctx,
		`SELECT body FROM records WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s/%d: %w", collection, id, err)
	}
	return json.RawMessage(body), nil
}

// CreateRecord stores fields under the collection's next id.
func (s *SQLiteStore) CreateRecord(ctx context.Context, collection string, fields map[string]any) (json.RawMessage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO sequences (collection, last_id) VALUES (?, 1)
		ON CONFLICT(collection) DO UPDATE SET last_id = last_id + 1
		RETURNING last_id
	`, collection).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("allocating %s id: %w", collection, err)
	}

	body, err := encodeRecord(id, fields)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO records (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		collection, id, string(body), now, now)
	if err != nil {
		return nil, fmt.Errorf("inserting %s record: %w", collection, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing %s record: %w", collection, err)
	}

	s.logger.Debug("created record", "collection", collection, "id", id)
	return body, nil
}

// UpdateRecord merges fields into the stored record.
// Returns ErrNotFound if it doesn't exist.
func (s *SQLiteStore) UpdateRecord(ctx context.Context, collection string, id int64, fields map[string]any) (json.RawMessage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	current, err := getRecord(ctx, tx, collection, id)
	if err != nil {
		return nil, err
	}

	body, err := mergeRecord(current, id, fields)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE records SET body = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(body), time.Now().UTC().Format(time.RFC3339), collection, id)
	if err != nil {
		return nil, fmt.Errorf("updating %s/%d: %w", collection, id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing %s/%d: %w", collection, id, err)
	}
	return body, nil
}

// DeleteRecord removes a record and returns its last state.
// Returns ErrNotFound if it doesn't exist.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ? RETURNING body`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("deleting %s/%d: %w", collection, id, err)
	}

	s.logger.Debug("deleted record", "collection", collection, "id", id)
	return json.RawMessage(body), nil
}

// CreateTester inserts a tester and sets its ID.
// Returns ErrEmailExists if the email is taken.
func (s *SQLiteStore) CreateTester(ctx context.Context, t *Tester) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO testers (email, password_hash, first_name, last_name, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		t.Email,
		t.PasswordHash,
		t.FirstName,
		t.LastName,
		t.Active,
		t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isDuplicateEmail(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("inserting tester: %w", err)
	}

	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading tester id: %w", err)
	}

	s.logger.Info("created tester", "id", t.ID, "email", t.Email)
	return nil
}

// isDuplicateEmail reports whether err is the UNIQUE violation on testers.email.
func isDuplicateEmail(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed: testers.email")
}

// GetTester retrieves a tester by ID.
func (s *SQLiteStore) GetTester(ctx context.Context, id int64) (*Tester, error) {
	return s.scanTester(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, first_name, last_name, active, created_at
		FROM testers
		WHERE id = ?
	`, id))
}

// GetTesterByEmail retrieves a tester by email.
func (s *SQLiteStore) GetTesterByEmail(ctx context.Context, email string) (*Tester, error) {
	return s.scanTester(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, first_name, last_name, active, created_at
		FROM testers
		WHERE email = ?
	`, email))
}

func (s *SQLiteStore) scanTester(row *sql.Row) (*Tester, error) {
	var t Tester
	var createdAtStr string

	err := row.Scan(
		&t.ID,
		&t.Email,
		&t.PasswordHash,
		&t.FirstName,
		&t.LastName,
		&t.Active,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying tester: %w", err)
	}

	t.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &t, nil
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
