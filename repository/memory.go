package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memDoc struct {
	id   ID
	body []byte
	// fields is body decoded generically, used for filter matching.
	fields map[string]any
}

// MemoryStore is an in-process Store. Documents are kept JSON-encoded, so
// decoding behaves like the networked backends.
type MemoryStore struct {
	name string

	mu          sync.RWMutex
	collections map[string][]memDoc
}

func NewMemoryStore(name string) *MemoryStore {
	return &MemoryStore{name: name, collections: make(map[string][]memDoc)}
}

func (m *MemoryStore) Name() string { return m.name }

func (m *MemoryStore) Insert(_ context.Context, collection string, doc any) (ID, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return ID{}, fmt.Errorf("encode document: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return ID{}, fmt.Errorf("document is not an object: %w", err)
	}
	id := NewID(uuid.NewString())

	m.mu.Lock()
	m.collections[collection] = append(m.collections[collection], memDoc{id: id, body: body, fields: fields})
	m.mu.Unlock()
	return id, nil
}

func (m *MemoryStore) Find(_ context.Context, collection string, filter Filter, limit int, fn func(ID, Decoder) error) error {
	if limit <= 0 {
		return nil
	}
	want, err := normalize(filter)
	if err != nil {
		return err
	}

	m.mu.RLock()
	docs := m.collections[collection]
	matched := make([]memDoc, 0, min(limit, len(docs)))
	for _, d := range docs {
		if len(matched) == limit {
			break
		}
		if matches(d.fields, want) {
			matched = append(matched, d)
		}
	}
	m.mu.RUnlock()

	for _, d := range matched {
		if err := fn(d.id, jsonDecoder(d.body)); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStore) CollectionNames(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Count returns the number of documents in collection.
func (m *MemoryStore) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close(context.Context) error { return nil }

// normalize round-trips filter values through JSON so they compare equal to
// stored fields.
func normalize(filter Filter) (map[string]any, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode filter: %w", err)
	}
	return out, nil
}

func matches(fields, want map[string]any) bool {
	for k, v := range want {
		got, ok := fields[k]
		if !ok || !reflect.DeepEqual(got, v) {
			return false
		}
	}
	return true
}
