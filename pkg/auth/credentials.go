package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"igloader/pkg/models"
)

// DefaultName is the entry used when no name is given
const DefaultName = "default"

// Entry is a named set of backend settings. The settings are forwarded to
// the backend verbatim; their meaning is the backend's business.
type Entry struct {
	Name         string          `json:"name"`
	Settings     models.Settings `json:"settings"`
	LastModified time.Time       `json:"last_modified"`
}

// SettingsStore is the interface for storing and retrieving settings entries
type SettingsStore interface {
	// Store saves an entry under its name
	Store(entry *Entry) error

	// Retrieve gets the entry with the given name
	Retrieve(name string) (*Entry, error)

	// List returns all stored entries
	List() ([]*Entry, error)

	// Delete removes the entry with the given name
	Delete(name string) error

	// Exists checks if an entry exists
	Exists(name string) bool
}

// Manager handles settings storage with fallback mechanisms
type Manager struct {
	stores []SettingsStore
}

// NewManager creates a settings manager backed by the system keychain when
// available, an encrypted file, and finally the environment
func NewManager() (*Manager, error) {
	var stores []SettingsStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "settings.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a Manager over the given stores, tried in order
func NewManagerWithStores(stores ...SettingsStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the entry using the first store that accepts it
func (m *Manager) Store(entry *Entry) error {
	if entry == nil {
		return ErrInvalidSettings
	}
	if entry.Name == "" {
		entry.Name = DefaultName
	}
	if entry.Settings.IsZero() {
		return fmt.Errorf("%w: at least one setting is required", ErrInvalidSettings)
	}

	entry.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(entry)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store settings: %w", lastErr)
	}
	return errors.New("no available settings stores")
}

// Retrieve gets the entry from the first store that has it
func (m *Manager) Retrieve(name string) (*Entry, error) {
	if name == "" {
		name = DefaultName
	}
	for _, store := range m.stores {
		if entry, err := store.Retrieve(name); err == nil && entry != nil {
			return entry, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSettingsNotFound, name)
}

// RetrieveDefault returns the settings from the environment, then the
// default entry, then whichever entry was modified last
func (m *Manager) RetrieveDefault() (*Entry, error) {
	for _, store := range m.stores {
		if envStore, ok := store.(*EnvironmentStore); ok {
			if entry, err := envStore.Retrieve(""); err == nil {
				return entry, nil
			}
		}
	}

	if entry, err := m.Retrieve(DefaultName); err == nil {
		return entry, nil
	}

	entries, err := m.List()
	if err == nil && len(entries) > 0 {
		return entries[0], nil
	}
	return nil, ErrSettingsNotFound
}

// Settings returns the default settings, or zero settings when none exist
func (m *Manager) Settings() models.Settings {
	entry, err := m.RetrieveDefault()
	if err != nil {
		return models.Settings{}
	}
	return entry.Settings
}

// List returns the entries of all stores, newest first. When several
// stores hold the same name the most recent version wins.
func (m *Manager) List() ([]*Entry, error) {
	byName := make(map[string]*Entry)

	for _, store := range m.stores {
		entries, err := store.List()
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if existing, ok := byName[entry.Name]; !ok || entry.LastModified.After(existing.LastModified) {
				byName[entry.Name] = entry
			}
		}
	}

	result := make([]*Entry, 0, len(byName))
	for _, entry := range byName {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastModified.After(result[j].LastModified)
	})
	return result, nil
}

// Delete removes the entry from all stores
func (m *Manager) Delete(name string) error {
	if name == "" {
		name = DefaultName
	}

	var deleted bool
	var lastErr error
	for _, store := range m.stores {
		if err := store.Delete(name); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil && !errors.Is(lastErr, ErrSettingsNotFound) && !errors.Is(lastErr, ErrStoreUnavailable) {
		return fmt.Errorf("failed to delete settings: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrSettingsNotFound, name)
	}
	return nil
}

// DeleteAll removes every stored entry
func (m *Manager) DeleteAll() error {
	entries, err := m.List()
	if err != nil {
		return err
	}
	for _, entry := range entries {
		_ = m.Delete(entry.Name) // Ignore individual errors
	}
	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "igloader")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "igloader")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "igloader")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "igloader")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// SanitizeEntry returns a copy of entry with secrets masked. The password
// and the credential part of a host:port:user:pass proxy are hidden.
func SanitizeEntry(entry *Entry) *Entry {
	if entry == nil {
		return nil
	}

	out := *entry
	if out.Settings.Password != "" {
		out.Settings.Password = maskString(out.Settings.Password)
	}
	if parts := strings.SplitN(out.Settings.Proxy, ":", 4); len(parts) == 4 {
		parts[3] = maskString(parts[3])
		out.Settings.Proxy = strings.Join(parts, ":")
	}
	return &out
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrSettingsNotFound = errors.New("settings not found")
	ErrInvalidSettings  = errors.New("invalid settings")
	ErrStoreUnavailable = errors.New("settings store unavailable")
)
