// Package store persists opaque snapshots under string keys.
// Backends are interchangeable: callers see Load and Save only.
package store

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Store is a key-value store for serialized snapshots.
type Store interface {
	// Load returns the bytes saved under key. ok is false when nothing was saved.
	Load(key string) (data []byte, ok bool, err error)
	// Save replaces the bytes stored under key.
	Save(key string, data []byte) error
}

// ErrPersistence is matched by every PersistenceError.
var ErrPersistence = errors.New("persistence failed")

// PersistenceError reports a failed read or write.
type PersistenceError struct {
	Op  string // "load" or "save"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the store for backend rooted at path.
// Call Close on the result when it implements io.Closer.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(path)
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}
}

// Close closes s if it holds resources.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Load implements Store.
func (s *MemoryStore) Load(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	clone := make([]byte, len(data))
	copy(clone, data)
	return clone, true, nil
}

// Save implements Store.
func (s *MemoryStore) Save(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := make([]byte, len(data))
	copy(clone, data)
	s.data[key] = clone
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
