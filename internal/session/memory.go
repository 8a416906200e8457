package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store used by tests and offline runs.
// Values round-trip through JSON so stored shapes match the NATS store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Save stores the JSON encoding of value under the scoped key.
func (s *MemoryStore) Save(_ context.Context, scope Scope, key string, value any) error {
	if err := scope.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("session: marshal %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[kvKey(scope, key)] = data
	return nil
}

// Load decodes the scoped key into out, or returns ErrNotFound.
func (s *MemoryStore) Load(_ context.Context, scope Scope, key string, out any) error {
	if err := scope.Validate(); err != nil {
		return err
	}

	s.mu.RLock()
	data, ok := s.data[kvKey(scope, key)]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s in %s", ErrNotFound, key, scope.String())
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("session: unmarshal %s: %w", key, err)
	}
	return nil
}

// Len reports the number of stored keys across all scopes.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
