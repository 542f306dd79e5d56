package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "igloader"
	keyringPrefix  = "settings_"
	keyringIndex   = "settings_index"
)

// KeyringStore implements SettingsStore using the system keychain.
// The keychain cannot enumerate entries, so the names are kept in an
// index item of their own.
type KeyringStore struct {
	mu sync.Mutex
}

// NewKeyringStore creates a keyring store after checking the keychain works
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves the entry to the system keychain
func (k *KeyringStore) Store(entry *Entry) error {
	if entry == nil || entry.Name == "" {
		return ErrInvalidSettings
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if err := keyring.Set(keyringService, keyringPrefix+entry.Name, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	names := k.names()
	names[entry.Name] = true
	return k.saveNames(names)
}

// Retrieve gets the entry from the system keychain
func (k *KeyringStore) Retrieve(name string) (*Entry, error) {
	if name == "" {
		return nil, ErrInvalidSettings
	}

	data, err := keyring.Get(keyringService, keyringPrefix+name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return &entry, nil
}

// List returns the indexed entries
func (k *KeyringStore) List() ([]*Entry, error) {
	k.mu.Lock()
	names := k.names()
	k.mu.Unlock()

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	entries := make([]*Entry, 0, len(sorted))
	for _, name := range sorted {
		if entry, err := k.Retrieve(name); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Delete removes the entry from the system keychain
func (k *KeyringStore) Delete(name string) error {
	if name == "" {
		return ErrInvalidSettings
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if err := keyring.Delete(keyringService, keyringPrefix+name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrSettingsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	names := k.names()
	delete(names, name)
	return k.saveNames(names)
}

// Exists checks if the entry exists in the keychain
func (k *KeyringStore) Exists(name string) bool {
	if name == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+name)
	return err == nil
}

// names reads the index. Callers hold k.mu.
func (k *KeyringStore) names() map[string]bool {
	names := make(map[string]bool)
	data, err := keyring.Get(keyringService, keyringIndex)
	if err != nil {
		return names
	}

	var list []string
	if json.Unmarshal([]byte(data), &list) == nil {
		for _, name := range list {
			names[name] = true
		}
	}
	return names
}

func (k *KeyringStore) saveNames(names map[string]bool) error {
	if len(names) == 0 {
		if err := keyring.Delete(keyringService, keyringIndex); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to update keyring index: %w", err)
		}
		return nil
	}

	list := make([]string, 0, len(names))
	for name := range names {
		list = append(list, name)
	}
	sort.Strings(list)

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal keyring index: %w", err)
	}
	if err := keyring.Set(keyringService, keyringIndex, string(data)); err != nil {
		return fmt.Errorf("failed to update keyring index: %w", err)
	}
	return nil
}
