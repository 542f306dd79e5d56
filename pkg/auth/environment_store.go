package auth

import (
	"os"
	"time"

	"igloader/pkg/models"
)

// Environment variables read by EnvironmentStore
const (
	EnvProxy    = "IGLOADER_SETTINGS_PROXY"
	EnvDocID    = "IGLOADER_SETTINGS_DOC_ID"
	EnvUsername = "IGLOADER_SETTINGS_USERNAME"
	EnvPassword = "IGLOADER_SETTINGS_PASSWORD"
)

// EnvironmentStore implements SettingsStore on top of environment
// variables. It is read only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based settings store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(entry *Entry) error {
	return ErrStoreUnavailable
}

// Retrieve builds an entry from the environment. The name is only a label.
func (e *EnvironmentStore) Retrieve(name string) (*Entry, error) {
	settings := models.Settings{
		Proxy:    os.Getenv(EnvProxy),
		DocID:    os.Getenv(EnvDocID),
		Username: os.Getenv(EnvUsername),
		Password: os.Getenv(EnvPassword),
	}
	if settings.IsZero() {
		return nil, ErrSettingsNotFound
	}

	if name == "" {
		name = "environment"
	}
	return &Entry{
		Name:         name,
		Settings:     settings,
		LastModified: time.Now(),
	}, nil
}

// List returns a single entry if any variable is set
func (e *EnvironmentStore) List() ([]*Entry, error) {
	entry, err := e.Retrieve("")
	if err != nil {
		return []*Entry{}, nil
	}
	return []*Entry{entry}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if any settings variable is set
func (e *EnvironmentStore) Exists(name string) bool {
	_, err := e.Retrieve(name)
	return err == nil
}
