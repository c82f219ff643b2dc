// ABOUTME: Store interface and data types for the stub API's persistence
// ABOUTME: Defines Tester and the record operations shared by SQLite and mock stores

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested record or tester does not exist
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering an email twice
var ErrEmailExists = errors.New("email already registered")

// Tester is a registered account of the API.
type Tester struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Active       bool
	CreatedAt    time.Time
}

// Store is the persistence used by the stub API.
type Store interface {
	// ListRecords returns every record of a collection in id order.
	ListRecords(ctx context.Context, collection string) ([]json.RawMessage, error)
	// ListRecordsWhere returns the records whose integer field equals value.
	ListRecordsWhere(ctx context.Context, collection, field string, value int64) ([]json.RawMessage, error)
	GetRecord(ctx context.Context, collection string, id int64) (json.RawMessage, error)
	// CreateRecord stores fields under a new id and returns the stored record.
	CreateRecord(ctx context.Context, collection string, fields map[string]any) (json.RawMessage, error)
	// UpdateRecord merges fields into the record and returns the result.
	UpdateRecord(ctx context.Context, collection string, id int64, fields map[string]any) (json.RawMessage, error)
	// DeleteRecord removes the record and returns what was removed.
	DeleteRecord(ctx context.Context, collection string, id int64) (json.RawMessage, error)

	CreateTester(ctx context.Context, t *Tester) error
	GetTester(ctx context.Context, id int64) (*Tester, error)
	GetTesterByEmail(ctx context.Context, email string) (*Tester, error)

	Close() error
}

// encodeRecord renders fields as a JSON object with the given id.
func encodeRecord(id int64, fields map[string]any) (json.RawMessage, error) {
	obj := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		if k == "id" {
			continue
		}
		obj[k] = v
	}
	obj["id"] = id
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return data, nil
}

// mergeRecord applies fields on top of a stored record, keeping its id.
func mergeRecord(body json.RawMessage, id int64, fields map[string]any) (json.RawMessage, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		obj[k] = v
	}
	return encodeRecord(id, obj)
}

// decodeObject decodes a stored record keeping numbers exact.
func decodeObject(body json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return obj, nil
}
