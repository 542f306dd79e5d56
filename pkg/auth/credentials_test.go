package auth

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zalando/go-keyring"

	"igloader/pkg/models"
)

func TestSettingsManager(t *testing.T) {
	manager, mockStore := NewMockManager()

	entry := &Entry{
		Settings: models.Settings{
			Proxy:    "10.0.0.1:8080:bob:hunter2hunter2",
			DocID:    "8845758582119845",
			Username: "bob",
			Password: "correct-horse-battery",
		},
	}

	if err := manager.Store(entry); err != nil {
		t.Fatalf("Failed to store settings: %v", err)
	}
	if entry.Name != DefaultName {
		t.Errorf("Name = %q, want %q", entry.Name, DefaultName)
	}

	retrieved, err := manager.Retrieve("")
	if err != nil {
		t.Fatalf("Failed to retrieve settings: %v", err)
	}
	if retrieved.Settings != entry.Settings {
		t.Errorf("Settings mismatch: got %+v, want %+v", retrieved.Settings, entry.Settings)
	}
	if manager.Settings() != entry.Settings {
		t.Error("Settings() should return the default entry")
	}

	sanitized := SanitizeEntry(retrieved)
	if sanitized.Settings.Password == entry.Settings.Password {
		t.Error("Password should be masked")
	}
	if !strings.HasPrefix(sanitized.Settings.Proxy, "10.0.0.1:8080:bob:") || strings.Contains(sanitized.Settings.Proxy, "hunter2hunter2") {
		t.Errorf("Proxy password should be masked, got %s", sanitized.Settings.Proxy)
	}
	if sanitized.Settings.Username != "bob" {
		t.Error("Username should not be masked")
	}
	if retrieved.Settings.Password != entry.Settings.Password {
		t.Error("SanitizeEntry must not modify its argument")
	}

	if err := manager.Delete(""); err != nil {
		t.Errorf("Failed to delete settings: %v", err)
	}
	if _, err := manager.Retrieve(""); !errors.Is(err, ErrSettingsNotFound) {
		t.Errorf("Expected ErrSettingsNotFound, got %v", err)
	}
	if mockStore.Count() != 0 {
		t.Errorf("Expected 0 entries after deletion, got %d", mockStore.Count())
	}
	if err := manager.Delete(""); !errors.Is(err, ErrSettingsNotFound) {
		t.Errorf("Deleting twice should report not found, got %v", err)
	}
}

func TestManagerRejectsEmptySettings(t *testing.T) {
	manager, _ := NewMockManager()

	if err := manager.Store(&Entry{Name: "empty"}); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("Expected ErrInvalidSettings for empty settings, got %v", err)
	}
	if err := manager.Store(nil); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("Expected ErrInvalidSettings, got %v", err)
	}
	if !manager.Settings().IsZero() {
		t.Error("Settings() should be zero without stored entries")
	}
}

func TestManagerFallsBackOnStoreErrors(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = fmt.Errorf("keychain locked")
	working := NewMockStore()
	manager := NewManagerWithStores(broken, working)

	if err := manager.Store(&Entry{Name: "work", Settings: models.Settings{DocID: "1"}}); err != nil {
		t.Fatalf("Store should fall back to the next store: %v", err)
	}
	if !working.Exists("work") {
		t.Error("Entry should be in the second store")
	}

	working.StoreError = fmt.Errorf("disk full")
	if err := manager.Store(&Entry{Name: "home", Settings: models.Settings{DocID: "2"}}); err == nil {
		t.Error("Expected an error when every store fails")
	}
}

func TestManagerListPrefersNewest(t *testing.T) {
	older := NewMockStore()
	newer := NewMockStore()
	now := time.Now()

	older.Store(&Entry{Name: "a", Settings: models.Settings{DocID: "old"}, LastModified: now.Add(-time.Hour)})
	newer.Store(&Entry{Name: "a", Settings: models.Settings{DocID: "new"}, LastModified: now})
	newer.Store(&Entry{Name: "b", Settings: models.Settings{DocID: "b"}, LastModified: now.Add(-2 * time.Hour)})

	entries, err := NewManagerWithStores(older, newer).List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "a" || entries[0].Settings.DocID != "new" {
		t.Errorf("Expected newest version of a first, got %+v", entries[0])
	}

	// without a default entry the most recent one is used
	def, err := NewManagerWithStores(older, newer).RetrieveDefault()
	if err != nil {
		t.Fatalf("RetrieveDefault failed: %v", err)
	}
	if def.Settings.DocID != "new" {
		t.Errorf("RetrieveDefault = %+v", def)
	}
}

func TestEncryptedFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.enc")

	store, err := NewEncryptedFileStoreWithPassphrase(path, "test_passphrase_123")
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	entry := &Entry{
		Name:     "default",
		Settings: models.Settings{Username: "encrypted_user", Password: "encrypted_password"},
	}
	if err := store.Store(entry); err != nil {
		t.Fatalf("Failed to store in encrypted file: %v", err)
	}

	retrieved, err := store.Retrieve("default")
	if err != nil {
		t.Fatalf("Failed to retrieve from encrypted file: %v", err)
	}
	if retrieved.Settings.Password != "encrypted_password" {
		t.Errorf("Password mismatch after encryption/decryption")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(content, []byte("encrypted_password")) {
		t.Error("File contains plaintext password")
	}
	if bytes.Contains(content, []byte("encrypted_user")) {
		t.Error("File contains plaintext username")
	}

	// a wrong passphrase cannot read it
	other, _ := NewEncryptedFileStoreWithPassphrase(path, "wrong")
	if _, err := other.Retrieve("default"); err == nil || errors.Is(err, ErrSettingsNotFound) {
		t.Errorf("Expected a decryption error, got %v", err)
	}

	if err := store.Delete("default"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("File should be removed with the last entry")
	}
	entries, err := store.List()
	if err != nil || len(entries) != 0 {
		t.Errorf("List after delete = %v, %v", entries, err)
	}
}

func TestEncryptedFileStoreUsesPassphraseEnv(t *testing.T) {
	t.Setenv(EnvPassphrase, "from_env")
	path := filepath.Join(t.TempDir(), "settings.enc")

	store, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}
	if err := store.Store(&Entry{Name: "x", Settings: models.Settings{DocID: "42"}}); err != nil {
		t.Fatal(err)
	}

	same, _ := NewEncryptedFileStoreWithPassphrase(path, "from_env")
	if !same.Exists("x") {
		t.Error("Store should be readable with the environment passphrase")
	}
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv(EnvProxy, "1.2.3.4:3128")
	t.Setenv(EnvDocID, "")
	t.Setenv(EnvUsername, "envuser")
	t.Setenv(EnvPassword, "")

	store := NewEnvironmentStore()

	entry, err := store.Retrieve("")
	if err != nil {
		t.Fatalf("Failed to retrieve from environment: %v", err)
	}
	if entry.Settings.Proxy != "1.2.3.4:3128" {
		t.Errorf("Proxy mismatch: got %s", entry.Settings.Proxy)
	}
	if entry.Settings.Username != "envuser" {
		t.Errorf("Username mismatch: got %s", entry.Settings.Username)
	}

	if err := store.Store(&Entry{}); err != ErrStoreUnavailable {
		t.Error("Expected ErrStoreUnavailable for environment store")
	}

	// the environment wins over stored entries
	mock := NewMockStore()
	mock.Store(&Entry{Name: DefaultName, Settings: models.Settings{Username: "stored"}})
	def, err := NewManagerWithStores(mock, store).RetrieveDefault()
	if err != nil {
		t.Fatal(err)
	}
	if def.Settings.Username != "envuser" {
		t.Errorf("Expected environment settings, got %+v", def.Settings)
	}
}

func TestEnvironmentStoreEmpty(t *testing.T) {
	for _, key := range []string{EnvProxy, EnvDocID, EnvUsername, EnvPassword} {
		t.Setenv(key, "")
	}

	store := NewEnvironmentStore()
	if store.Exists("") {
		t.Error("No settings should exist")
	}
	entries, err := store.List()
	if err != nil || len(entries) != 0 {
		t.Errorf("List = %v, %v", entries, err)
	}
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	if err != nil {
		t.Fatalf("Failed to create keyring store: %v", err)
	}

	for _, name := range []string{"work", "home"} {
		if err := store.Store(&Entry{Name: name, Settings: models.Settings{DocID: name}}); err != nil {
			t.Fatalf("Store %s failed: %v", name, err)
		}
	}

	entries, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Name != "home" || entries[1].Name != "work" {
		t.Errorf("List = %+v", entries)
	}

	if err := store.Delete("work"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Exists("work") {
		t.Error("work should be gone")
	}
	if err := store.Delete("work"); !errors.Is(err, ErrSettingsNotFound) {
		t.Errorf("Expected ErrSettingsNotFound, got %v", err)
	}
	entries, _ = store.List()
	if len(entries) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(entries))
	}
}

func TestMockStore(t *testing.T) {
	store := NewMockStore()

	entries, err := store.List()
	if err != nil {
		t.Errorf("Failed to list empty store: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected 0 entries, got %d", len(entries))
	}

	if err := store.Store(&Entry{Name: "mock", Settings: models.Settings{DocID: "1"}}); err != nil {
		t.Errorf("Failed to store entry: %v", err)
	}
	if store.Count() != 1 {
		t.Errorf("Expected 1 entry, got %d", store.Count())
	}
	if !store.Exists("mock") {
		t.Error("Entry should exist")
	}

	store.ListError = fmt.Errorf("injected error")
	if _, err := store.List(); err == nil || err.Error() != "injected error" {
		t.Error("Expected injected error")
	}
}

func TestWriteSettingsGuide(t *testing.T) {
	var buf bytes.Buffer
	WriteSettingsGuide(&buf)

	for _, want := range []string{EnvProxy, EnvPassphrase, "igloader settings set"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("guide does not mention %s", want)
		}
	}
}
