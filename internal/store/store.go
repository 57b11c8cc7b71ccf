// Package store provides the namespaced key-value persistence every service
// writes through. FileStore is the durable ("local") scope, MemStore the
// process-lifetime ("session") scope.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"agenthub/internal/utils"
)

// Store is the persistence boundary. Keys are flat strings; callers namespace
// them by purpose and, where relevant, user id.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys() []string
}

// GetJSON loads and decodes the value at key. Missing or undecodable values
// return false; corruption is never fatal.
func GetJSON(s Store, key string, target any) bool {
	data, ok := s.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false
	}
	return true
}

// SetJSON encodes value and stores it at key.
func SetJSON(s Store, key string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return s.Set(key, data)
}

// FileStore keeps one JSON file per key under <dir>. Writes are atomic
// (temp file + rename) so a crash never leaves a half-written value.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) path(key string) string {
	return filepath.Join(fs.dir, key+".json")
}

func (fs *FileStore) Get(key string) ([]byte, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	data, err := os.ReadFile(fs.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (fs *FileStore) Set(key string, value []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return utils.WriteFileAtomic(fs.path(key), value, 0o644)
}

func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	err := os.Remove(fs.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (fs *FileStore) Keys() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		keys = append(keys, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return keys
}

// MemStore is the session-scoped store: contents live for the process only.
// It doubles as the test stand-in for FileStore.
type MemStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string][]byte)}
}

func (ms *MemStore) Get(key string) ([]byte, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	data, ok := ms.values[key]
	return data, ok
}

func (ms *MemStore) Set(key string, value []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	ms.values[key] = cp
	return nil
}

func (ms *MemStore) Delete(key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.values, key)
	return nil
}

func (ms *MemStore) Keys() []string {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	keys := make([]string, 0, len(ms.values))
	for key := range ms.values {
		keys = append(keys, key)
	}
	return keys
}
