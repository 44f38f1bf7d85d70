/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docrepo

import (
	"fmt"
	"sync"

	"github.com/suparena/docrepo/storagemodels"
)

// Manager is a thread-safe registry of repositories keyed by name (for
// example, "activities" or "notes"). Its methods are not generic; use
// RegisterRepository and LookupRepository for typed access.
type Manager struct {
	mu    sync.RWMutex
	repos map[string]any
}

// NewManager creates an empty repository manager.
func NewManager() *Manager {
	return &Manager{
		repos: make(map[string]any),
	}
}

// Register stores the provided repository under the given key.
func (m *Manager) Register(key string, repo any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.repos[key]; exists {
		return fmt.Errorf("repository with key %q already registered", key)
	}
	m.repos[key] = repo
	return nil
}

// Get retrieves the repository associated with the given key. The caller
// must type-assert the returned value.
func (m *Manager) Get(key string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	repo, exists := m.repos[key]
	if !exists {
		return nil, fmt.Errorf("repository with key %q not found", key)
	}
	return repo, nil
}

// Remove deletes the repository registered under the given key.
func (m *Manager) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.repos[key]; !exists {
		return fmt.Errorf("repository with key %q not found", key)
	}
	delete(m.repos, key)
	return nil
}

// List returns all registered repository keys.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.repos))
	for k := range m.repos {
		keys = append(keys, k)
	}
	return keys
}

// RegisterRepository registers a typed repository under the given key.
func RegisterRepository[T storagemodels.Entity](m *Manager, key string, repo *Repository[T]) error {
	return m.Register(key, repo)
}

// LookupRepository retrieves a typed repository by key, failing when the
// key is unknown or registered for a different entity family.
func LookupRepository[T storagemodels.Entity](m *Manager, key string) (*Repository[T], error) {
	raw, err := m.Get(key)
	if err != nil {
		return nil, err
	}
	repo, ok := raw.(*Repository[T])
	if !ok {
		return nil, fmt.Errorf("repository with key %q holds a different entity family", key)
	}
	return repo, nil
}
