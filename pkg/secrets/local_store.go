package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// LocalStore is a reference Store implementation that seals secret values
// at rest with a Keyring and persists them to a single JSON file, keyed by
// the scope-qualified name. It is suitable for single-node deployments and
// tests; a production deployment would back Store with a managed secrets
// service instead.
type LocalStore struct {
	mu      sync.RWMutex
	keyring *Keyring
	path    string // empty means in-memory only
	values  map[string]string
}

// NewLocalStore builds a LocalStore persisting sealed values to dataPath,
// using keyring to seal/open them.
func NewLocalStore(keyring *Keyring, dataPath string) (*LocalStore, error) {
	s := &LocalStore{keyring: keyring, path: dataPath, values: make(map[string]string)}
	if dataPath == "" {
		return s, nil
	}
	if _, err := os.Stat(dataPath); err == nil {
		data, err := os.ReadFile(dataPath)
		if err != nil {
			return nil, fmt.Errorf("secrets: read store: %w", err)
		}
		if err := json.Unmarshal(data, &s.values); err != nil {
			return nil, fmt.Errorf("secrets: parse store: %w", err)
		}
	}
	return s, nil
}

// NewInMemoryLocalStore builds a LocalStore with a fresh in-memory keyring
// and no persistence, for tests.
func NewInMemoryLocalStore() (*LocalStore, error) {
	kr, err := NewInMemoryKeyring()
	if err != nil {
		return nil, err
	}
	return NewLocalStore(kr, "")
}

func (s *LocalStore) Read(ctx context.Context, scope TenantScope, name string) ([]byte, error) {
	s.mu.RLock()
	sealed, ok := s.values[scope.Key(name)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.keyring.Open(sealed)
}

func (s *LocalStore) Write(ctx context.Context, scope TenantScope, name string, value []byte) error {
	sealed, err := s.keyring.Seal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.values[scope.Key(name)] = sealed
	s.mu.Unlock()

	return s.persist()
}

func (s *LocalStore) Delete(ctx context.Context, scope TenantScope, name string) error {
	s.mu.Lock()
	delete(s.values, scope.Key(name))
	s.mu.Unlock()

	return s.persist()
}

func (s *LocalStore) persist() error {
	if s.path == "" {
		return nil
	}

	s.mu.RLock()
	data, err := json.MarshalIndent(s.values, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("secrets: marshal store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("secrets: create store dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("secrets: write store: %w", err)
	}
	return nil
}
