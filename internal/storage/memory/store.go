package memory

import (
	"context"
	"sync"

	"github.com/bcnelson/sentinelguard/internal/storage"
)

// Store is an in-memory implementation of the storage interface for testing.
type Store struct {
	mu        sync.RWMutex
	documents map[string][]byte

	// FailLoad and FailSave, when set, are returned by Load and Save.
	FailLoad error
	FailSave error
}

// Ensure Store implements storage.Store.
var _ storage.Store = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{documents: make(map[string][]byte)}
}

func (s *Store) Close() error { return nil }

func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailLoad != nil {
		return nil, s.FailLoad
	}

	data, ok := s.documents[name]
	if !ok {
		return nil, storage.ErrDocumentNotFound
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSave != nil {
		return s.FailSave
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	s.documents[name] = stored
	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, name)
	return nil
}

// Raw returns the stored bytes of a document, for assertions in tests.
func (s *Store) Raw(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.documents[name]
	return data, ok
}
