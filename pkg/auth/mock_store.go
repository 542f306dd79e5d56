package auth

import (
	"sort"
	"sync"
)

// MockStore is an in-memory SettingsStore with error injection
type MockStore struct {
	entries map[string]Entry
	mu      sync.RWMutex

	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates an empty in-memory store
func NewMockStore() *MockStore {
	return &MockStore{entries: make(map[string]Entry)}
}

// Store saves a copy of the entry
func (m *MockStore) Store(entry *Entry) error {
	if m.StoreError != nil {
		return m.StoreError
	}
	if entry == nil || entry.Name == "" {
		return ErrInvalidSettings
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Name] = *entry
	return nil
}

// Retrieve returns a copy of the named entry
func (m *MockStore) Retrieve(name string) (*Entry, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}
	if name == "" {
		return nil, ErrInvalidSettings
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[name]
	if !ok {
		return nil, ErrSettingsNotFound
	}
	return &entry, nil
}

// List returns copies of all entries sorted by name
func (m *MockStore) List() ([]*Entry, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		entry := entry
		out = append(out, &entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes the named entry
func (m *MockStore) Delete(name string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	if name == "" {
		return ErrInvalidSettings
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[name]; !ok {
		return ErrSettingsNotFound
	}
	delete(m.entries, name)
	return nil
}

// Exists reports whether the named entry is stored
func (m *MockStore) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[name]
	return ok
}

// Count returns the number of stored entries
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// NewMockManager creates a Manager over a single MockStore
func NewMockManager() (*Manager, *MockStore) {
	store := NewMockStore()
	return NewManagerWithStores(store), store
}
