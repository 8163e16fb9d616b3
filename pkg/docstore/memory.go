package docstore

import (
	"context"
	"sync"

	"github.com/college-hq/advising-engine/pkg/apperrors"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and the
// "memory" backend for local development without Postgres or Redis.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string][]byte),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.data[collection][key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, collection, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(collection, key, value)
	return nil
}

// Update implements Store. The whole read-modify-write runs under the
// store mutex, so concurrent updates serialize.
func (s *MemoryStore) Update(ctx context.Context, collection, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current []byte
	if value, ok := s.data[collection][key]; ok {
		current = make([]byte, len(value))
		copy(current, value)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	s.put(collection, key, next)
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data[collection], key)
	return nil
}

// Scan implements Store.
func (s *MemoryStore) Scan(ctx context.Context, collection string, fn ScanFunc) error {
	s.mu.Lock()
	snapshot := make(map[string][]byte, len(s.data[collection]))
	for k, v := range s.data[collection] {
		value := make([]byte, len(v))
		copy(value, v)
		snapshot[k] = value
	}
	s.mu.Unlock()

	for k, v := range snapshot {
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) put(collection, key string, value []byte) {
	if s.data[collection] == nil {
		s.data[collection] = make(map[string][]byte)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[collection][key] = stored
}

// Ensure MemoryStore implements Store at compile time.
var _ Store = (*MemoryStore)(nil)
