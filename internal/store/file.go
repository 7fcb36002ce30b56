package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

const lockFileName = ".lock"

// FileStore keeps one <key>.json file per key in a directory.
// Writes go through a temp file and rename, and every access holds an
// advisory lock so the CLI and a running TUI do not interleave.
type FileStore struct {
	dir  string
	lock *flock.Flock
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("store: directory is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &FileStore{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFileName)),
	}, nil
}

// Dir returns the directory holding the snapshot files.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file used for key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load implements Store.
func (s *FileStore) Load(key string) ([]byte, bool, error) {
	if err := validKey(key); err != nil {
		return nil, false, &PersistenceError{Op: "load", Key: key, Err: err}
	}
	if err := s.lock.RLock(); err != nil {
		return nil, false, &PersistenceError{Op: "load", Key: key, Err: err}
	}
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, &PersistenceError{Op: "load", Key: key, Err: err}
	}
	return data, true, nil
}

// Save implements Store.
func (s *FileStore) Save(key string, data []byte) error {
	if err := validKey(key); err != nil {
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}
	if err := s.lock.Lock(); err != nil {
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}
	defer s.lock.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}
	return nil
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}
