// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu        sync.RWMutex
	records   map[string]map[int64]json.RawMessage // keyed by collection, then id
	sequences map[string]int64                     // last id per collection
	testers   map[int64]*Tester
	nextID    int64
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		records:   make(map[string]map[int64]json.RawMessage),
		sequences: make(map[string]int64),
		testers:   make(map[int64]*Tester),
	}
}

// ListRecords returns every record of a collection in id order.
func (m *MockStore) ListRecords(ctx context.Context, collection string) ([]json.RawMessage, error) {
	return m.list(collection, func(json.RawMessage) bool { return true }), nil
}

// ListRecordsWhere returns the records whose integer field equals value.
func (m *MockStore) ListRecordsWhere(ctx context.Context, collection, field string, value int64) ([]json.RawMessage, error) {
	return m.list(collection, func(body json.RawMessage) bool {
		v := gjson.GetBytes(body, field)
		return v.Type == gjson.Number && v.Int() == value
	}), nil
}

func (m *MockStore) list(collection string, keep func(json.RawMessage) bool) []json.RawMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coll := m.records[collection]
	ids := make([]int64, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []json.RawMessage{}
	for _, id := range ids {
		if keep(coll[id]) {
			out = append(out, coll[id])
		}
	}
	return out
}

// GetRecord retrieves one record.
func (m *MockStore) GetRecord(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	body, ok := m.records[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return body, nil
}

// CreateRecord stores fields under the collection's next id.
func (m *MockStore) CreateRecord(ctx context.Context, collection string, fields map[string]any) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.sequences[collection] + 1
	body, err := encodeRecord(id, fields)
	if err != nil {
		return nil, err
	}
	m.sequences[collection] = id
	if m.records[collection] == nil {
		m.records[collection] = make(map[int64]json.RawMessage)
	}
	m.records[collection][id] = body
	return body, nil
}

// UpdateRecord merges fields into the stored record.
func (m *MockStore) UpdateRecord(ctx context.Context, collection string, id int64, fields map[string]any) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	body, err := mergeRecord(current, id, fields)
	if err != nil {
		return nil, err
	}
	m.records[collection][id] = body
	return body, nil
}

// DeleteRecord removes a record and returns its last state.
func (m *MockStore) DeleteRecord(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	body, ok := m.records[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.records[collection], id)
	return body, nil
}

// CreateTester stores a tester and sets its ID.
func (m *MockStore) CreateTester(ctx context.Context, t *Tester) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.testers {
		if existing.Email == t.Email {
			return ErrEmailExists
		}
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	m.nextID++
	t.ID = m.nextID

	// Make a copy to avoid external modification
	c := *t
	m.testers[c.ID] = &c
	return nil
}

// GetTester retrieves a tester by ID.
func (m *MockStore) GetTester(ctx context.Context, id int64) (*Tester, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.testers[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *t
	return &result, nil
}

// GetTesterByEmail retrieves a tester by email.
func (m *MockStore) GetTesterByEmail(ctx context.Context, email string) (*Tester, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.testers {
		if t.Email == email {
			result := *t
			return &result, nil
		}
	}
	return nil, ErrNotFound
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}

// Ensure MockStore implements Store.
var _ Store = (*MockStore)(nil)
